package store

import (
	"context"
	"fmt"

	"github.com/rcliao/talk-companion/internal/model"
)

// ExportAll returns the current state and the full event history, oldest first.
func (s *SQLiteStore) ExportAll(ctx context.Context) (*Export, error) {
	st, err := s.LoadState(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, input, code, slides, language, created_at
		 FROM events ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := &Export{State: st}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out.Events = append(out.Events, e)
	}
	return out, rows.Err()
}

// Import replaces the state with the exported one and adds its events.
// Events already present (same ID) are skipped. Returns the number of
// events in the export that were applied or already present.
func (s *SQLiteStore) Import(ctx context.Context, x *Export) (int, error) {
	if err := s.SaveState(ctx, x.State); err != nil {
		return 0, err
	}
	imported := 0
	for _, e := range x.Events {
		if e.ID == "" {
			if _, err := s.AppendEvent(ctx, e); err != nil {
				return imported, err
			}
			imported++
			continue
		}
		if !model.ValidEventKinds[e.Kind] {
			return imported, fmt.Errorf("import event %s: invalid kind %q", e.ID, e.Kind)
		}
		if err := s.insertEvent(ctx, e, true); err != nil {
			return imported, fmt.Errorf("import event %s: %w", e.ID, err)
		}
		imported++
	}
	return imported, nil
}
