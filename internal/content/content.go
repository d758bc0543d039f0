// Package content locates, probes and fetches per-slide explanation pages.
package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/rcliao/talk-companion/internal/i18n"
)

// ErrNotFound is returned by Fetch when a slide has no content.
var ErrNotFound = errors.New("content not found")

// maxProbes bounds concurrent existence checks.
const maxProbes = 8

// Path returns the slash-separated resource path for a slide in a locale.
func Path(lang i18n.Locale, slide int) string {
	return fmt.Sprintf("content/%s/slide%d.html", lang, slide)
}

// Source gives access to slide explanation pages.
type Source interface {
	// Exists reports whether content for the slide is available. Any
	// failure counts as not existing.
	Exists(ctx context.Context, lang i18n.Locale, slide int) bool

	// Fetch returns the HTML for the slide.
	Fetch(ctx context.Context, lang i18n.Locale, slide int) (string, error)
}

// Probe checks every slide concurrently and returns those with content,
// ascending. The whole batch completes before it returns. The only error
// is ctx's, in which case the result is incomplete.
func Probe(ctx context.Context, src Source, lang i18n.Locale, slides []int) ([]int, error) {
	exists := make([]bool, len(slides))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxProbes)
	for i, slide := range slides {
		g.Go(func() error {
			exists[i] = src.Exists(gctx, lang, slide)
			return nil
		})
	}
	g.Wait()

	found := make([]int, 0, len(slides))
	for i, ok := range exists {
		if ok {
			found = append(found, slides[i])
		}
	}
	sort.Ints(found)
	return found, ctx.Err()
}

// FSSource serves content from a filesystem whose root holds the content/ tree.
type FSSource struct {
	fsys fs.FS
}

// NewFSSource wraps fsys, typically os.DirFS of the site root.
func NewFSSource(fsys fs.FS) *FSSource {
	return &FSSource{fsys: fsys}
}

func (s *FSSource) Exists(ctx context.Context, lang i18n.Locale, slide int) bool {
	if ctx.Err() != nil {
		return false
	}
	info, err := fs.Stat(s.fsys, Path(lang, slide))
	return err == nil && info.Mode().IsRegular()
}

func (s *FSSource) Fetch(ctx context.Context, lang i18n.Locale, slide int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	b, err := fs.ReadFile(s.fsys, Path(lang, slide))
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%s: %w", Path(lang, slide), ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", Path(lang, slide), err)
	}
	return string(b), nil
}

// HTTPSource serves content from a web server that hosts the content/ tree.
type HTTPSource struct {
	base   *url.URL
	client *http.Client
}

// NewHTTPSource returns a source rooted at baseURL. A nil client uses
// http.DefaultClient.
func NewHTTPSource(baseURL string, client *http.Client) (*HTTPSource, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse content url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("content url %q: scheme must be http or https", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSource{base: u, client: client}, nil
}

func (s *HTTPSource) url(lang i18n.Locale, slide int) string {
	return s.base.ResolveReference(&url.URL{Path: Path(lang, slide)}).String()
}

// Exists issues a HEAD request; any 2xx status means the page exists.
func (s *HTTPSource) Exists(ctx context.Context, lang i18n.Locale, slide int) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, s.url(lang, slide), nil)
	if err != nil {
		return false
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

func (s *HTTPSource) Fetch(ctx context.Context, lang i18n.Locale, slide int) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url(lang, slide), nil)
	if err != nil {
		return "", err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", Path(lang, slide), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("%s: %w", Path(lang, slide), ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetch %s: status %d", Path(lang, slide), resp.StatusCode)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", Path(lang, slide), err)
	}
	return string(b), nil
}
