package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cliniscribe/scribe/pkg/scribe/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// Open opens a SQLite database with WAL mode enabled and creates the
// schema if needed.
func Open(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	dialogue_count INTEGER NOT NULL DEFAULT 0,
	degraded_phases TEXT NOT NULL DEFAULT '[]',
	result_json TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveRun inserts or replaces a run by ID.
func (s *sqliteStore) SaveRun(ctx context.Context, r store.Run) error {
	degraded, err := json.Marshal(nonNil(r.DegradedPhases))
	if err != nil {
		return fmt.Errorf("marshal degraded phases: %w", err)
	}

	const stmt = `
INSERT INTO runs (id, created_at, dialogue_count, degraded_phases, result_json)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	created_at=excluded.created_at,
	dialogue_count=excluded.dialogue_count,
	degraded_phases=excluded.degraded_phases,
	result_json=excluded.result_json;
`
	_, err = s.db.ExecContext(ctx, stmt,
		r.ID,
		r.CreatedAt.UTC().Format(time.RFC3339),
		r.DialogueCount,
		string(degraded),
		r.ResultJSON,
	)
	return err
}

// GetRun returns a run by ID.
func (s *sqliteStore) GetRun(ctx context.Context, id string) (store.Run, bool, error) {
	const stmt = `
SELECT id, created_at, dialogue_count, degraded_phases, result_json
FROM runs WHERE id = ?;
`
	row := s.db.QueryRowContext(ctx, stmt, id)
	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return store.Run{}, false, nil
	}
	if err != nil {
		return store.Run{}, false, err
	}
	return r, true, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *sqliteStore) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	if limit <= 0 {
		limit = 50
	}

	const stmt = `
SELECT id, created_at, dialogue_count, degraded_phases, result_json
FROM runs ORDER BY created_at DESC, id DESC LIMIT ?;
`
	rows, err := s.db.QueryContext(ctx, stmt, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []store.Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteRun removes a run by ID. Deleting a missing run is not an error.
func (s *sqliteStore) DeleteRun(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?;`, id)
	return err
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (store.Run, error) {
	var (
		r         store.Run
		createdAt string
		degraded  string
	)
	if err := row.Scan(&r.ID, &createdAt, &r.DialogueCount, &degraded, &r.ResultJSON); err != nil {
		return store.Run{}, err
	}

	ts, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return store.Run{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	r.CreatedAt = ts

	if err := json.Unmarshal([]byte(degraded), &r.DegradedPhases); err != nil {
		return store.Run{}, fmt.Errorf("parse degraded_phases: %w", err)
	}
	if r.DegradedPhases == nil {
		r.DegradedPhases = []string{}
	}
	return r, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
