// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/histstore/store.go
// Summary: SQLite persistence for accepted command lines.
//
// The in-memory history ring lives inside the editor and is lost on exit.
// Store keeps every accepted line on disk so a later session can replay the
// most recent ones back into its ring.

package histstore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	_ "modernc.org/sqlite"
)

const schemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    ts INTEGER NOT NULL,              -- UnixNano
    line BLOB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_history_ts ON history(ts);
`

// Entry is one persisted line.
type Entry struct {
	ID   int64
	Time time.Time
	Line []byte
}

// Store is a SQLite-backed history log. It is safe for concurrent use.
type Store struct {
	db     *sql.DB
	logger *log.Logger
	now    func() time.Time

	mu     sync.Mutex
	closed bool
}

// Open opens (creating if needed) the database at path.
func Open(path string, logger *log.Logger) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("history database path is empty")
	}
	if logger == nil {
		logger = log.Default()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	dsn := path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=cache_size(-8000)" + // 8MB cache
		"&_pragma=temp_store(MEMORY)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	if err := checkSchema(db, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to check schema version: %w", err)
	}

	logger.Debug("opened history database", "path", path)
	return &Store{db: db, logger: logger, now: time.Now}, nil
}

// checkSchema records the schema version on a fresh database and refuses
// databases written by a newer layout.
func checkSchema(db *sql.DB, logger *log.Logger) error {
	var version int
	err := db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	switch {
	case err == sql.ErrNoRows:
		_, err = db.Exec("INSERT INTO schema_version (version) VALUES (?)", schemaVersion)
		return err
	case err != nil:
		return err
	case version > schemaVersion:
		return fmt.Errorf("database schema %d is newer than supported %d", version, schemaVersion)
	case version < schemaVersion:
		logger.Info("upgrading history schema", "from", version, "to", schemaVersion)
		_, err = db.Exec("UPDATE schema_version SET version = ?", schemaVersion)
		return err
	}
	return nil
}

// Append stores line with the current time. The line is copied.
func (s *Store) Append(line []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return sql.ErrConnDone
	}

	if _, err := s.db.Exec(
		"INSERT INTO history (ts, line) VALUES (?, ?)",
		s.now().UnixNano(), append([]byte{}, line...),
	); err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}
	return nil
}

// Recent returns up to n of the newest entries, oldest first.
func (s *Store) Recent(n int) ([]Entry, error) {
	if n <= 0 {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, sql.ErrConnDone
	}

	rows, err := s.db.Query(
		"SELECT id, ts, line FROM (SELECT id, ts, line FROM history ORDER BY id DESC LIMIT ?) ORDER BY id ASC",
		n,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e  Entry
			ts int64
		)
		if err := rows.Scan(&e.ID, &ts, &e.Line); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		e.Time = time.Unix(0, ts)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Count returns the number of stored entries.
func (s *Store) Count() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, sql.ErrConnDone
	}

	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM history").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}
	return n, nil
}

// Close closes the database. Further calls fail with sql.ErrConnDone.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
