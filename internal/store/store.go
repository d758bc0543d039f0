// Package store provides the companion persistence interface and SQLite implementation.
package store

import (
	"context"
	"errors"

	"github.com/rcliao/talk-companion/internal/model"
)

// StateKey is the fixed key the companion state record is stored under.
const StateKey = "companionState"

// ErrCorruptState is returned by LoadState when the stored record cannot be
// decoded. The defaults are returned alongside it.
var ErrCorruptState = errors.New("stored state is corrupt")

// HistoryParams holds parameters for listing events.
type HistoryParams struct {
	Kind  string
	Limit int
}

// Export is the portable form of everything the store holds.
type Export struct {
	State  model.State   `json:"state"`
	Events []model.Event `json:"events"`
}

// Store defines the companion storage interface.
type Store interface {
	// LoadState reads the persisted state merged over model.DefaultState.
	LoadState(ctx context.Context) (model.State, error)

	// SaveState overwrites the persisted state.
	SaveState(ctx context.Context, st model.State) error

	// AppendEvent records an event, assigning its ID and timestamp.
	AppendEvent(ctx context.Context, e model.Event) (model.Event, error)

	// History lists events newest first.
	History(ctx context.Context, p HistoryParams) ([]model.Event, error)

	// Close closes the store.
	Close() error
}
