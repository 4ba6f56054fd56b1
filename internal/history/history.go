// Package history persists executed command lines in a SQLite database,
// one row per line, tagged with the shell session that ran it.
package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Entry is one recorded command line.
type Entry struct {
	ID      string
	Session string
	Line    string
	At      time.Time
}

// Store is a SQLite-backed history log. Each Store instance represents
// one shell session.
type Store struct {
	db      *sql.DB
	session string
}

// Open opens (or creates) the history database at dbPath and starts a
// new session.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	// WAL mode so a second shell instance can read while we write.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	s := &Store{db: db, session: uuid.NewString()}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate history db: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS history (
			id         TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			line       TEXT NOT NULL,
			at         DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_history_at ON history(at);
	`)
	return err
}

// Session returns the id assigned to this shell session.
func (s *Store) Session() string {
	return s.session
}

// Add records one executed line.
func (s *Store) Add(line string) error {
	_, err := s.db.Exec(`
		INSERT INTO history (id, session_id, line, at) VALUES (?, ?, ?, ?)
	`, uuid.NewString(), s.session, line, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("record history: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, oldest first.
func (s *Store) Recent(limit int) ([]Entry, error) {
	rows, err := s.db.Query(`
		SELECT id, session_id, line, at FROM history
		ORDER BY rowid DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Session, &e.Line, &e.At); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	// Reverse into chronological order for display.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
