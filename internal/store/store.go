// Package store persists finished analyses. The result payload is an
// opaque JSON blob: the store never interprets it beyond storing and
// returning it verbatim.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	apperrors "github.com/dygy/chordlens/internal/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS analyses (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	artist     TEXT NOT NULL DEFAULT '',
	audio_path TEXT NOT NULL DEFAULT '',
	result     BLOB NOT NULL,
	created_at TIMESTAMP NOT NULL
);
`

// Summary is the listing view of a saved analysis.
type Summary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Artist    string    `json:"artist"`
	CreatedAt time.Time `json:"createdAt"`
}

// Analysis is a fully loaded saved analysis.
type Analysis struct {
	Summary
	AudioPath string
	Result    []byte
}

// Store is a SQLite-backed analysis store.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Save stores a result blob with its metadata and returns the assigned id.
func (s *Store) Save(title, artist, audioPath string, result []byte) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO analyses (id, title, artist, audio_path, result, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, title, artist, audioPath, result, time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("save analysis: %w", err)
	}
	return id, nil
}

// Get loads a saved analysis by id.
func (s *Store) Get(id string) (*Analysis, error) {
	var a Analysis
	err := s.db.QueryRow(
		`SELECT id, title, artist, audio_path, result, created_at FROM analyses WHERE id = ?`, id,
	).Scan(&a.ID, &a.Title, &a.Artist, &a.AudioPath, &a.Result, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load analysis: %w", err)
	}
	return &a, nil
}

// List returns summaries of all saved analyses, newest first.
func (s *Store) List() ([]Summary, error) {
	rows, err := s.db.Query(
		`SELECT id, title, artist, created_at FROM analyses ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sm Summary
		if err := rows.Scan(&sm.ID, &sm.Title, &sm.Artist, &sm.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan analysis row: %w", err)
		}
		out = append(out, sm)
	}
	return out, rows.Err()
}

// Delete removes a saved analysis and returns its audio path so the caller
// can attempt to remove the file as well.
func (s *Store) Delete(id string) (string, error) {
	a, err := s.Get(id)
	if err != nil {
		return "", err
	}
	if _, err := s.db.Exec(`DELETE FROM analyses WHERE id = ?`, id); err != nil {
		return "", fmt.Errorf("delete analysis: %w", err)
	}
	return a.AudioPath, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
