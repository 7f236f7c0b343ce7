// internal/history/store.go

// Package history records practice transmissions in a sqlite database.
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// ErrClosed is returned when the store is used after Close.
var ErrClosed = errors.New("history store is closed")

const schema = `CREATE TABLE IF NOT EXISTS sessions (
	id             TEXT PRIMARY KEY,
	started_at     INTEGER NOT NULL,
	mode           TEXT NOT NULL,
	wpm            REAL NOT NULL,
	farnsworth_wpm REAL NOT NULL,
	text           TEXT NOT NULL,
	canceled       INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS ix_sessions_started ON sessions (started_at);`

// Entry is one recorded transmission.
type Entry struct {
	ID            uuid.UUID
	StartedAt     time.Time
	Mode          string
	WPM           float64
	FarnsworthWPM float64
	Text          string
	Canceled      bool
}

// Store is a sqlite-backed history of transmissions.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Record stores e. A zero ID is replaced with a new one.
func (s *Store) Record(e Entry) (uuid.UUID, error) {
	if s.db == nil {
		return uuid.Nil, ErrClosed
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	_, err := s.db.Exec(
		`INSERT INTO sessions (id, started_at, mode, wpm, farnsworth_wpm, text, canceled)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID.String(), e.StartedAt.UnixMilli(), e.Mode, e.WPM, e.FarnsworthWPM, e.Text, e.Canceled,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("record session: %w", err)
	}
	return e.ID, nil
}

// MarkCanceled flags a recorded session as canceled.
func (s *Store) MarkCanceled(id uuid.UUID) error {
	if s.db == nil {
		return ErrClosed
	}
	if _, err := s.db.Exec(`UPDATE sessions SET canceled = 1 WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("mark canceled: %w", err)
	}
	return nil
}

// Recent returns up to n entries, newest first.
func (s *Store) Recent(n int) ([]Entry, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	rows, err := s.db.Query(
		`SELECT id, started_at, mode, wpm, farnsworth_wpm, text, canceled
		 FROM sessions ORDER BY started_at DESC, rowid DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			id      string
			started int64
		)
		if err := rows.Scan(&id, &started, &e.Mode, &e.WPM, &e.FarnsworthWPM, &e.Text, &e.Canceled); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		if e.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse session id: %w", err)
		}
		e.StartedAt = time.UnixMilli(started)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return entries, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
