// Package store persists per-message refinement state in SQLite: the
// original text keyed by message id (for undo), and the original plus
// change log (for restoring the review view across reloads).
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// MessageStore is a mutex-guarded SQLite handle. All operations are
// idempotent upserts or lookups; callers own message-id scoping.
type MessageStore struct {
	db *sql.DB
	mu sync.Mutex
}

// Revision is the persisted review state for one message.
type Revision struct {
	Original  string
	Changelog string
}

const schema = `
CREATE TABLE IF NOT EXISTS originals (
	message_id TEXT PRIMARY KEY,
	original   TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS revisions (
	message_id TEXT PRIMARY KEY,
	original   TEXT NOT NULL,
	changelog  TEXT NOT NULL DEFAULT '',
	updated_at TIMESTAMP NOT NULL
);
`

// Open initializes the database at path, creating the directory and schema
// as needed.
func Open(path string) (*MessageStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &MessageStore{db: db}, nil
}

// Close releases the database handle.
func (s *MessageStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// SaveOriginal records the pre-refinement text for a message. Saving twice
// keeps the first original: undo always returns to the true source text.
func (s *MessageStore) SaveOriginal(messageID, original string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO originals (message_id, original, updated_at) VALUES (?, ?, ?)`,
		messageID, original, time.Now().UTC(),
	)
	return err
}

// Original returns the stored pre-refinement text, if any.
func (s *MessageStore) Original(messageID string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var original string
	err := s.db.QueryRow(
		`SELECT original FROM originals WHERE message_id = ?`, messageID,
	).Scan(&original)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return original, true, nil
}

// DeleteOriginal clears the undo record after it has been consumed.
func (s *MessageStore) DeleteOriginal(messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`DELETE FROM originals WHERE message_id = ?`, messageID)
	return err
}

// SaveRevision records the review state for a message, replacing any
// previous revision.
func (s *MessageStore) SaveRevision(messageID, original, changelog string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO revisions (message_id, original, changelog, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(message_id) DO UPDATE SET original = excluded.original, changelog = excluded.changelog, updated_at = excluded.updated_at`,
		messageID, original, changelog, time.Now().UTC(),
	)
	return err
}

// Revision returns the stored review state, if any.
func (s *MessageStore) Revision(messageID string) (Revision, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rev Revision
	err := s.db.QueryRow(
		`SELECT original, changelog FROM revisions WHERE message_id = ?`, messageID,
	).Scan(&rev.Original, &rev.Changelog)
	if err == sql.ErrNoRows {
		return Revision{}, false, nil
	}
	if err != nil {
		return Revision{}, false, err
	}
	return rev, true, nil
}

// DeleteRevision clears the review state for a message.
func (s *MessageStore) DeleteRevision(messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`DELETE FROM revisions WHERE message_id = ?`, messageID)
	return err
}
