// Package store provides SQLite-based persistence for eagledup.
// It keeps the run ledger and resumable scan checkpoints; library
// items themselves live only in the external store.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const currentSchemaVersion = 1

// Store represents the SQLite database store
type Store struct {
	db *sql.DB
}

// New creates a new store connection
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Initialize creates the database schema
func (s *Store) Initialize() error {
	schema := `
	-- Run ledger (one row per scan/apply invocation)
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		mode TEXT NOT NULL,
		status TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		finished_at INTEGER,
		items_scanned INTEGER DEFAULT 0,
		groups_found INTEGER DEFAULT 0,
		items_planned INTEGER DEFAULT 0,
		items_trashed INTEGER DEFAULT 0,
		bytes_recoverable INTEGER DEFAULT 0,
		bytes_trashed INTEGER DEFAULT 0
	);

	-- Failed store actions, kept for the history view
	CREATE TABLE IF NOT EXISTS run_failures (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		item_id TEXT NOT NULL,
		action TEXT NOT NULL,
		reason TEXT NOT NULL,
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	-- Resumable scan progress, keyed by item-snapshot hash
	CREATE TABLE IF NOT EXISTS scan_checkpoints (
		snapshot_hash TEXT NOT NULL,
		stage TEXT NOT NULL,
		chunk INTEGER NOT NULL,
		chunk_size INTEGER NOT NULL,
		edges JSON NOT NULL,
		PRIMARY KEY (snapshot_hash, stage, chunk)
	);

	-- Misc state
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT
	);

	-- Schema version tracking
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY
	);

	-- Indexes
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_failures_run ON run_failures(run_id);
	`

	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	_, err = s.db.Exec("INSERT OR REPLACE INTO schema_version (version) VALUES (?)", currentSchemaVersion)
	if err != nil {
		return fmt.Errorf("failed to set schema version: %w", err)
	}

	return nil
}

// DB returns the underlying database connection for advanced queries
func (s *Store) DB() *sql.DB {
	return s.db
}

// GetValue gets a value from the key-value store
func (s *Store) GetValue(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SetValue sets a value in the key-value store
func (s *Store) SetValue(key, value string) error {
	_, err := s.db.Exec(
		"INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = ?",
		key, value, value,
	)
	return err
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func timeOrZero(unix int64) time.Time {
	if unix == 0 {
		return time.Time{}
	}
	return time.Unix(unix, 0).UTC()
}
