package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath      string      `json:"db_path"`
	DBSizeBytes int64       `json:"db_size_bytes"`
	TotalEvents int         `json:"total_events"`
	Kinds       []KindStats `json:"kinds"`
	Codes       []CodeStats `json:"codes"`
}

// KindStats holds per-kind event counts.
type KindStats struct {
	Kind  string `json:"kind"`
	Count int    `json:"count"`
}

// CodeStats holds how often a code was unlocked.
type CodeStats struct {
	Code    string `json:"code"`
	Unlocks int    `json:"unlocks"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&st.TotalEvents)

	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, COUNT(*) AS cnt
		FROM events GROUP BY kind ORDER BY cnt DESC, kind`)
	if err != nil {
		return st, err
	}
	for rows.Next() {
		var k KindStats
		rows.Scan(&k.Kind, &k.Count)
		st.Kinds = append(st.Kinds, k)
	}
	rows.Close()

	rows, err = s.db.QueryContext(ctx, `
		SELECT code, COUNT(*) AS cnt
		FROM events WHERE kind = 'unlock' AND code IS NOT NULL
		GROUP BY code ORDER BY cnt DESC, code`)
	if err != nil {
		return st, err
	}
	defer rows.Close()
	for rows.Next() {
		var c CodeStats
		rows.Scan(&c.Code, &c.Unlocks)
		st.Codes = append(st.Codes, c)
	}

	return st, nil
}
