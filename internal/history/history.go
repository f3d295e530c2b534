// Package history records generation and split runs in a local SQLite
// database. Recording is best-effort: callers log and continue when a
// write fails, so a broken history database never blocks generation.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
    id          TEXT PRIMARY KEY,
    started_at  TIMESTAMP NOT NULL,
    command     TEXT NOT NULL,
    table_name  TEXT,
    kind        TEXT,
    rows        INTEGER DEFAULT 0,
    statements  INTEGER DEFAULT 0,
    bytes       INTEGER DEFAULT 0,
    duration_ms INTEGER DEFAULT 0,
    status      TEXT NOT NULL,
    error       TEXT
);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC);
`

// Entry is one recorded run.
type Entry struct {
	ID         string
	StartedAt  time.Time
	Command    string // "generate" or "split"
	Table      string
	Kind       string
	Rows       int
	Statements int
	Bytes      int
	Duration   time.Duration
	Status     string // "success" or "failed"
	Error      string
}

// Store is a handle on the history database.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the history database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts one run. A zero ID gets a generated one.
func (s *Store) Record(e Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.StartedAt.IsZero() {
		e.StartedAt = time.Now()
	}
	_, err := s.db.Exec(`
        INSERT INTO runs (id, started_at, command, table_name, kind, rows, statements, bytes, duration_ms, status, error)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.StartedAt, e.Command, e.Table, e.Kind,
		e.Rows, e.Statements, e.Bytes, e.Duration.Milliseconds(), e.Status, e.Error)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// List returns the most recent runs, newest first.
func (s *Store) List(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
        SELECT id, started_at, command, table_name, kind, rows, statements, bytes, duration_ms, status, error
        FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var durationMS int64
		var tableName, kind, errMsg sql.NullString
		if err := rows.Scan(&e.ID, &e.StartedAt, &e.Command, &tableName, &kind,
			&e.Rows, &e.Statements, &e.Bytes, &durationMS, &e.Status, &errMsg); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		e.Table = tableName.String
		e.Kind = kind.String
		e.Error = errMsg.String
		e.Duration = time.Duration(durationMS) * time.Millisecond
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
