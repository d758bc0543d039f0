package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/talk-companion/internal/i18n"
	"github.com/rcliao/talk-companion/internal/model"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	s := &SQLiteStore{
		db:      db,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID(t time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id         TEXT PRIMARY KEY,
		kind       TEXT NOT NULL,
		input      TEXT,
		code       TEXT,
		slides     TEXT,
		language   TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_events_kind ON events(kind);
	CREATE INDEX IF NOT EXISTS idx_events_created ON events(created_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) LoadState(ctx context.Context) (model.State, error) {
	st := model.DefaultState()

	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, StateKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return st, nil
	}
	if err != nil {
		return st, fmt.Errorf("load state: %w", err)
	}

	// Decoding over the defaults keeps any field the record lacks.
	merged := st
	if err := json.Unmarshal([]byte(raw), &merged); err != nil {
		return st, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	if merged.UnlockedSlides == nil {
		merged.UnlockedSlides = []int{}
	}
	return merged, nil
}

func (s *SQLiteStore) SaveState(ctx context.Context, st model.State) error {
	if st.UnlockedSlides == nil {
		st.UnlockedSlides = []int{}
	}
	b, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		StateKey, string(b), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AppendEvent(ctx context.Context, e model.Event) (model.Event, error) {
	if !model.ValidEventKinds[e.Kind] {
		return e, fmt.Errorf("invalid event kind %q", e.Kind)
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if e.ID == "" {
		e.ID = s.newID(e.CreatedAt)
	}
	if err := s.insertEvent(ctx, e, false); err != nil {
		return e, err
	}
	return e, nil
}

func (s *SQLiteStore) insertEvent(ctx context.Context, e model.Event, ignoreDup bool) error {
	var slidesJSON *string
	if len(e.Slides) > 0 {
		b, _ := json.Marshal(e.Slides)
		v := string(b)
		slidesJSON = &v
	}
	verb := "INSERT"
	if ignoreDup {
		verb = "INSERT OR IGNORE"
	}
	_, err := s.db.ExecContext(ctx,
		verb+` INTO events (id, kind, input, code, slides, language, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Kind, nullable(e.Input), nullable(e.Code), slidesJSON, string(e.Language),
		e.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (s *SQLiteStore) History(ctx context.Context, p HistoryParams) ([]model.Event, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	where := []string{"1 = 1"}
	args := []interface{}{}
	if p.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, p.Kind)
	}
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, input, code, slides, language, created_at
		 FROM events WHERE `+strings.Join(where, " AND ")+`
		 ORDER BY id DESC LIMIT ?`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row scanner) (model.Event, error) {
	var e model.Event
	var input, code, slides sql.NullString
	var language, createdAt string

	if err := row.Scan(&e.ID, &e.Kind, &input, &code, &slides, &language, &createdAt); err != nil {
		return e, err
	}
	e.Input = input.String
	e.Code = code.String
	e.Language = i18n.Locale(language)
	e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	if slides.Valid {
		json.Unmarshal([]byte(slides.String), &e.Slides)
	}
	return e, nil
}

func nullable(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
