// Package model defines the core companion data types.
package model

import (
	"time"

	"github.com/rcliao/talk-companion/internal/i18n"
)

// CodeEntry is one secret code and the slides it unlocks.
type CodeEntry struct {
	Code    string `json:"code" yaml:"code"`
	Slides  []int  `json:"slides" yaml:"slides"`
	Message string `json:"message" yaml:"message"`
}

// Catalog is the ordered list of codes. Position defines the cumulative
// unlock progression: entry i implies entries 0..i.
type Catalog []CodeEntry

// State is the visitor's persisted companion state.
type State struct {
	UnlockedSlides []int       `json:"unlockedSlides"`
	Language       i18n.Locale `json:"language"`
}

// DefaultState returns the state used before anything was persisted.
func DefaultState() State {
	return State{
		UnlockedSlides: []int{},
		Language:       i18n.Default,
	}
}

// Event kinds recorded in the history log.
const (
	EventUnlock   = "unlock"
	EventWrong    = "wrong"
	EventForget   = "forget"
	EventLanguage = "language"
)

// ValidEventKinds are the allowed event kinds.
var ValidEventKinds = map[string]bool{
	EventUnlock:   true,
	EventWrong:    true,
	EventForget:   true,
	EventLanguage: true,
}

// Event is one entry of the append-only submission history.
type Event struct {
	ID        string      `json:"id"`
	Kind      string      `json:"kind"`
	Input     string      `json:"input,omitempty"`
	Code      string      `json:"code,omitempty"`
	Slides    []int       `json:"slides,omitempty"`
	Language  i18n.Locale `json:"language"`
	CreatedAt time.Time   `json:"created_at"`
}
