// Package companion owns the visitor's unlock state and ties the unlock
// engine to persistence, content and locale text.
//
// A state change happens in two phases. Submit, Forget and SetLanguage are
// synchronous transitions that persist before returning. Refresh computes
// the derived link list afterwards and may be awaited or run detached; a
// detached Refresh that finishes after a later SetLanguage reports links
// for the language it started with.
package companion

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/rcliao/talk-companion/internal/content"
	"github.com/rcliao/talk-companion/internal/i18n"
	"github.com/rcliao/talk-companion/internal/model"
	"github.com/rcliao/talk-companion/internal/store"
	"github.com/rcliao/talk-companion/internal/unlock"
)

// Outcome describes what a submission did.
type Outcome struct {
	Result unlock.Result    `json:"-"`
	Entry  *model.CodeEntry `json:"entry,omitempty"`
	// Slides is the full unlocked set after a match.
	Slides []int `json:"slides,omitempty"`
	// Notice is the localized text to show; empty for blank input.
	Notice string `json:"notice,omitempty"`
}

// Link is one slide explanation offered to the visitor.
type Link struct {
	Slide int    `json:"slide"`
	Label string `json:"label"`
	Path  string `json:"path"`
}

// Companion is the application state object. It is safe for concurrent use.
type Companion struct {
	catalog model.Catalog
	store   store.Store
	source  content.Source
	log     zerolog.Logger

	mu    sync.Mutex
	state model.State
}

// New creates a companion with default state. Call Load to read the persisted state.
func New(c model.Catalog, st store.Store, src content.Source, log zerolog.Logger) *Companion {
	return &Companion{
		catalog: c,
		store:   st,
		source:  src,
		log:     log,
		state:   model.DefaultState(),
	}
}

// Load reads the persisted state once. A corrupt record or an unsupported
// language falls back to the defaults.
func (c *Companion) Load(ctx context.Context) error {
	st, err := c.store.LoadState(ctx)
	if errors.Is(err, store.ErrCorruptState) {
		c.log.Warn().Err(err).Msg("Ignoring stored state")
	} else if err != nil {
		return err
	}
	if !st.Language.Valid() {
		c.log.Warn().Str("language", string(st.Language)).Msg("Unsupported stored language, using default")
		st.Language = i18n.Default
	}
	st.UnlockedSlides = unlock.Sorted(st.UnlockedSlides)

	c.mu.Lock()
	c.state = st
	c.mu.Unlock()
	return nil
}

// State returns a copy of the current state.
func (c *Companion) State() model.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyState(c.state)
}

// Catalog returns the code catalog in unlock order.
func (c *Companion) Catalog() model.Catalog {
	return c.catalog
}

// Strings returns the UI text for the active language.
func (c *Companion) Strings() i18n.Strings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return i18n.For(c.state.Language)
}

// Submit resolves a typed code. Blank input is ignored without a notice.
// A wrong code leaves the state untouched. A match replaces the unlocked
// set with everything up to and including the matched code.
func (c *Companion) Submit(ctx context.Context, input string) (Outcome, error) {
	entry, idx, res := unlock.Resolve(input, c.catalog)
	if res == unlock.Blank {
		return Outcome{Result: res}, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	lang := c.state.Language

	if res == unlock.Wrong {
		c.record(ctx, model.Event{Kind: model.EventWrong, Input: input, Language: lang})
		c.log.Debug().Str("input", input).Msg("Wrong code")
		return Outcome{Result: res, Notice: i18n.For(lang).CodeError}, nil
	}

	next := model.State{
		UnlockedSlides: unlock.UnlockedSlides(idx, c.catalog),
		Language:       lang,
	}
	if err := c.store.SaveState(ctx, next); err != nil {
		return Outcome{}, fmt.Errorf("unlock %s: %w", entry.Code, err)
	}
	c.state = next
	c.record(ctx, model.Event{
		Kind: model.EventUnlock, Input: input, Code: entry.Code,
		Slides: next.UnlockedSlides, Language: lang,
	})
	c.log.Info().
		Str("code", entry.Code).
		Str("match", res.String()).
		Int("slides", len(next.UnlockedSlides)).
		Msg("Code unlocked")

	return Outcome{
		Result: res,
		Entry:  &entry,
		Slides: copyInts(next.UnlockedSlides),
		Notice: i18n.Success(lang, entry.Message),
	}, nil
}

// Forget locks every slide again and persists the empty set.
func (c *Companion) Forget(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := model.State{UnlockedSlides: []int{}, Language: c.state.Language}
	if err := c.store.SaveState(ctx, next); err != nil {
		return fmt.Errorf("forget: %w", err)
	}
	c.state = next
	c.record(ctx, model.Event{Kind: model.EventForget, Language: next.Language})
	c.log.Info().Msg("Codes forgotten")
	return nil
}

// SetLanguage switches the active locale and persists it.
func (c *Companion) SetLanguage(ctx context.Context, l i18n.Locale) error {
	if !l.Valid() {
		return fmt.Errorf("unsupported language %q", l)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	next := copyState(c.state)
	next.Language = l
	if err := c.store.SaveState(ctx, next); err != nil {
		return fmt.Errorf("set language: %w", err)
	}
	c.state = next
	c.record(ctx, model.Event{Kind: model.EventLanguage, Language: l})
	return nil
}

// Refresh probes content for every unlocked slide and returns links for
// those that exist, ascending by slide. The returned locale is the one the
// links were built for, which may differ from the current one if the
// language changed while probing.
func (c *Companion) Refresh(ctx context.Context) ([]Link, i18n.Locale, error) {
	st := c.State()
	if len(st.UnlockedSlides) == 0 {
		return []Link{}, st.Language, nil
	}

	found, err := content.Probe(ctx, c.source, st.Language, st.UnlockedSlides)
	if err != nil {
		return nil, st.Language, fmt.Errorf("refresh links: %w", err)
	}
	links := make([]Link, 0, len(found))
	for _, slide := range found {
		links = append(links, Link{
			Slide: slide,
			Label: i18n.LinkLabel(st.Language, slide),
			Path:  content.Path(st.Language, slide),
		})
	}
	c.log.Debug().
		Int("unlocked", len(st.UnlockedSlides)).
		Int("links", len(links)).
		Str("language", string(st.Language)).
		Msg("Links refreshed")
	return links, st.Language, nil
}

// Open returns the explanation for an unlocked slide. On any failure it
// returns the localized generic error text and false.
func (c *Companion) Open(ctx context.Context, slide int) (string, bool) {
	st := c.State()
	fallback := i18n.For(st.Language).LoadError

	if !slices.Contains(st.UnlockedSlides, slide) {
		c.log.Debug().Int("slide", slide).Msg("Slide is locked")
		return fallback, false
	}
	html, err := c.source.Fetch(ctx, st.Language, slide)
	if err != nil {
		c.log.Error().Err(err).Int("slide", slide).Msg("Error fetching slide content")
		return fallback, false
	}
	return html, true
}

// record appends to the history log. History is informational, so a
// failure is logged and otherwise ignored.
func (c *Companion) record(ctx context.Context, e model.Event) {
	if _, err := c.store.AppendEvent(ctx, e); err != nil {
		c.log.Warn().Err(err).Str("kind", e.Kind).Msg("Failed to record event")
	}
}

func copyState(st model.State) model.State {
	st.UnlockedSlides = copyInts(st.UnlockedSlides)
	return st
}

func copyInts(a []int) []int {
	out := make([]int, len(a))
	copy(out, a)
	return out
}
