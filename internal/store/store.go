// Package store persists scan history and comment attempts in SQLite and
// writes the JSON result files the pipeline stages exchange.
package store

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vneseyoungster/linkedin-automatic-comment/internal/comment"
	"github.com/vneseyoungster/linkedin-automatic-comment/internal/feed"
)

// Store handles all database operations
type Store struct {
	db *sql.DB
}

// New creates a new Store with SQLite backend
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scanned_posts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		scan_id TEXT NOT NULL,
		ember_id TEXT NOT NULL,
		author_name TEXT,
		category TEXT NOT NULL,
		is_sponsored BOOLEAN,
		is_vietnamese BOOLEAN,
		scanned_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS attempts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ember_id TEXT NOT NULL,
		author_name TEXT,
		comment_text TEXT NOT NULL,
		success BOOLEAN NOT NULL,
		error TEXT,
		steps TEXT,
		duration_seconds REAL,
		attempted_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_scanned_posts_scan ON scanned_posts(scan_id);
	CREATE INDEX IF NOT EXISTS idx_scanned_posts_author ON scanned_posts(author_name);
	CREATE INDEX IF NOT EXISTS idx_attempts_author ON attempts(author_name);
	CREATE INDEX IF NOT EXISTS idx_attempts_at ON attempts(attempted_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveScan records every post from a scan session
func (s *Store) SaveScan(scan *feed.ScanSession) error {
	for _, p := range scan.Posts {
		_, err := s.db.Exec(`
			INSERT INTO scanned_posts (scan_id, ember_id, author_name, category,
				is_sponsored, is_vietnamese, scanned_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, scan.ID, p.Identifier, p.AuthorName, string(p.Category),
			p.Sponsored, p.Vietnamese, scan.Timestamp)
		if err != nil {
			return err
		}
	}
	return nil
}

// SaveAttempt records one comment submission attempt
func (s *Store) SaveAttempt(authorName string, rec comment.AttemptRecord) error {
	stepsJSON, _ := json.Marshal(rec.StepsCompleted)

	_, err := s.db.Exec(`
		INSERT INTO attempts (ember_id, author_name, comment_text, success,
			error, steps, duration_seconds, attempted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.Identifier, authorName, rec.CommentText, rec.Success,
		rec.Error, string(stepsJSON), rec.DurationSeconds, rec.Timestamp)

	return err
}

// CommentedRecently reports whether an author already received a successful
// comment within the window. Used to avoid commenting on the same person
// across sessions.
func (s *Store) CommentedRecently(authorName string, window time.Duration) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM attempts
			WHERE author_name = ? AND success = 1 AND attempted_at >= ?
		)
	`, authorName, time.Now().Add(-window)).Scan(&exists)
	return exists, err
}

// AttemptStats returns total and successful attempt counts since the cutoff.
func (s *Store) AttemptStats(since time.Time) (total, successful int, err error) {
	err = s.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(success), 0) FROM attempts WHERE attempted_at >= ?
	`, since).Scan(&total, &successful)
	return total, successful, err
}
