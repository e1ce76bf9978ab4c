// Package store persists variables and the request history in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	exerr "github.com/msto63/exprkit/foundation/core/error"
	"github.com/msto63/exprkit/foundation/expr/executor"
)

// Kind names the operation a history entry records
type Kind string

const (
	KindParse    Kind = "parse"
	KindTokenize Kind = "tokenize"
	KindEvaluate Kind = "evaluate"
)

// HistoryEntry is one recorded request
type HistoryEntry struct {
	ID        int64     `json:"id"`
	RequestID string    `json:"request_id"`
	Input     string    `json:"input"`
	Kind      Kind      `json:"kind"`
	Rendered  string    `json:"rendered,omitempty"`
	Value     *int64    `json:"value,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Config holds configuration for the SQLite store
type Config struct {
	Path        string
	BusyTimeout time.Duration
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		Path:        "./data/exprkit.db",
		BusyTimeout: 5 * time.Second,
	}
}

// Store keeps variables and history in a SQLite database. It implements
// executor.Environment so evaluations can read and write variables directly.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ executor.Environment = (*Store)(nil)

// Open opens or creates the database at cfg.Path
func Open(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		cfg.Path = DefaultConfig().Path
	}
	if cfg.BusyTimeout <= 0 {
		cfg.BusyTimeout = DefaultConfig().BusyTimeout
	}

	if dir := filepath.Dir(cfg.Path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, dbError(err, "create data directory", "store.Open")
		}
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=%d",
		cfg.Path, cfg.BusyTimeout.Milliseconds())
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, dbError(err, "open database", "store.Open")
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, dbError(err, "initialize schema", "store.Open")
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS variables (
		name TEXT PRIMARY KEY,
		value INTEGER NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		request_id TEXT NOT NULL,
		input TEXT NOT NULL,
		kind TEXT NOT NULL,
		rendered TEXT,
		value INTEGER,
		error TEXT,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_history_created_at ON history(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_history_request_id ON history(request_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Lookup returns the value of a stored variable
func (s *Store) Lookup(ctx context.Context, name string) (int64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value int64
	err := s.db.QueryRowContext(ctx, `SELECT value FROM variables WHERE name = ?`, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, dbError(err, "lookup variable", "store.Lookup").WithDetail("name", name)
	}
	return value, true, nil
}

// Assign stores or replaces a variable
func (s *Store) Assign(ctx context.Context, name string, value int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO variables (name, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, name, value, time.Now().UTC())
	if err != nil {
		return dbError(err, "assign variable", "store.Assign").WithDetail("name", name)
	}
	return nil
}

// Variables returns all stored variables
func (s *Store) Variables(ctx context.Context) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT name, value FROM variables`)
	if err != nil {
		return nil, dbError(err, "list variables", "store.Variables")
	}
	defer rows.Close()

	vars := make(map[string]int64)
	for rows.Next() {
		var name string
		var value int64
		if err := rows.Scan(&name, &value); err != nil {
			return nil, dbError(err, "scan variable", "store.Variables")
		}
		vars[name] = value
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err, "list variables", "store.Variables")
	}
	return vars, nil
}

// VariableNames returns the stored variable names in sorted order
func (s *Store) VariableNames(ctx context.Context) ([]string, error) {
	vars, err := s.Variables(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// DeleteVariable removes one variable. It reports whether it existed.
func (s *Store) DeleteVariable(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM variables WHERE name = ?`, name)
	if err != nil {
		return false, dbError(err, "delete variable", "store.DeleteVariable").WithDetail("name", name)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ClearVariables removes all variables and returns how many there were
func (s *Store) ClearVariables(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM variables`)
	if err != nil {
		return 0, dbError(err, "clear variables", "store.ClearVariables")
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// RecordHistory appends an entry to the history. ID and CreatedAt are
// filled in when empty.
func (s *Store) RecordHistory(ctx context.Context, entry *HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	var value sql.NullInt64
	if entry.Value != nil {
		value = sql.NullInt64{Int64: *entry.Value, Valid: true}
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO history (request_id, input, kind, rendered, value, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, entry.RequestID, entry.Input, string(entry.Kind), nullString(entry.Rendered), value,
		nullString(entry.Error), entry.CreatedAt)
	if err != nil {
		return dbError(err, "record history", "store.RecordHistory")
	}

	entry.ID, _ = res.LastInsertId()
	return nil
}

// History returns the most recent entries, newest first. A limit of zero or
// less returns everything.
func (s *Store) History(ctx context.Context, limit int) ([]*HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, request_id, input, kind, rendered, value, error, created_at
		FROM history ORDER BY id DESC`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbError(err, "query history", "store.History")
	}
	defer rows.Close()

	var entries []*HistoryEntry
	for rows.Next() {
		var entry HistoryEntry
		var kind string
		var rendered, errText sql.NullString
		var value sql.NullInt64

		if err := rows.Scan(&entry.ID, &entry.RequestID, &entry.Input, &kind,
			&rendered, &value, &errText, &entry.CreatedAt); err != nil {
			return nil, dbError(err, "scan history entry", "store.History")
		}

		entry.Kind = Kind(kind)
		entry.Rendered = rendered.String
		entry.Error = errText.String
		if value.Valid {
			v := value.Int64
			entry.Value = &v
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err, "query history", "store.History")
	}
	return entries, nil
}

// PruneHistory keeps the newest keep entries and deletes the rest
func (s *Store) PruneHistory(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM history WHERE id NOT IN (
			SELECT id FROM history ORDER BY id DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return 0, dbError(err, "prune history", "store.PruneHistory")
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Ping checks that the database is reachable
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return dbError(err, "ping database", "store.Ping")
	}
	return nil
}

// Vacuum optimizes the database
func (s *Store) Vacuum(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "VACUUM"); err != nil {
		return dbError(err, "vacuum", "store.Vacuum")
	}
	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

func dbError(err error, message, operation string) *exerr.Error {
	return exerr.Wrap(err, "failed to "+message).
		WithCode(exerr.CodeDatabaseError).
		WithOperation(operation)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
