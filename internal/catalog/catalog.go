// Package catalog loads and validates the ordered code catalog.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/rcliao/talk-companion/internal/model"
	"github.com/rcliao/talk-companion/internal/unlock"
)

//go:embed default.yaml
var defaultYAML []byte

var (
	// ErrDuplicateCode is returned when two codes collide case-insensitively.
	ErrDuplicateCode = errors.New("duplicate code")
	// ErrEmpty is returned for a catalog without codes.
	ErrEmpty = errors.New("catalog has no codes")
)

type file struct {
	Codes []model.CodeEntry `yaml:"codes"`
}

// Default returns the embedded catalog.
func Default() (model.Catalog, error) {
	return Parse(defaultYAML)
}

// Load reads a catalog from path. An empty path yields the embedded default.
func Load(path string) (model.Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a YAML catalog, canonicalizes its codes and validates it.
// Declaration order is preserved.
func Parse(data []byte) (model.Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	c := make(model.Catalog, 0, len(f.Codes))
	for _, e := range f.Codes {
		e.Code = unlock.Normalize(e.Code)
		c = append(c, e)
	}
	if err := Validate(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks that codes are non-empty and unique under
// case-insensitive comparison, and that every entry unlocks at least one
// positive slide number.
func Validate(c model.Catalog) error {
	if len(c) == 0 {
		return ErrEmpty
	}
	seen := make(map[string]int, len(c))
	for i, e := range c {
		code := unlock.Normalize(e.Code)
		if code == "" {
			return fmt.Errorf("entry %d: code is required", i)
		}
		if prev, ok := seen[code]; ok {
			return fmt.Errorf("entry %d: %w %q (first at entry %d)", i, ErrDuplicateCode, code, prev)
		}
		seen[code] = i
		if len(e.Slides) == 0 {
			return fmt.Errorf("entry %d (%s): at least one slide is required", i, code)
		}
		for _, s := range e.Slides {
			if s <= 0 {
				return fmt.Errorf("entry %d (%s): invalid slide %d", i, code, s)
			}
		}
	}
	return nil
}
