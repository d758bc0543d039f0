// Package config loads companion settings from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// Config holds runtime settings. Command-line flags override these.
type Config struct {
	// DBPath is the SQLite file holding the companion state.
	DBPath string `env:"TALK_COMPANION_DB"`
	// CatalogPath is a YAML code catalog; empty means the embedded default.
	CatalogPath string `env:"TALK_COMPANION_CATALOG"`
	// ContentDir is the site root containing the content/ tree.
	ContentDir string `env:"TALK_COMPANION_CONTENT" envDefault:"."`
	// ContentURL, when set, probes and fetches content over HTTP instead of ContentDir.
	ContentURL string `env:"TALK_COMPANION_CONTENT_URL"`
	// Addr is the listen address for serve.
	Addr string `env:"TALK_COMPANION_ADDR" envDefault:"127.0.0.1:8080"`

	LogLevel  string `env:"TALK_COMPANION_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"TALK_COMPANION_LOG_FORMAT"`
}

// Load parses the environment into a Config and fills derived defaults.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBPath()
	}
	return cfg, nil
}

// DefaultDBPath is ~/.talk-companion/state.db.
func DefaultDBPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".talk-companion", "state.db")
}
