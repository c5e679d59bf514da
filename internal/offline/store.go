// Package offline keeps copies of successful GET responses so the app keeps
// working when the network is gone.
//
// Responses are stored per cache version. Activating a new version purges
// everything stored under older ones.
package offline

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS responses (
	version   TEXT    NOT NULL,
	url       TEXT    NOT NULL,
	status    INTEGER NOT NULL,
	header    TEXT    NOT NULL,
	body      BLOB    NOT NULL,
	stored_at INTEGER NOT NULL,
	PRIMARY KEY (version, url)
)`

// Entry is one cached response.
type Entry struct {
	URL      string
	Status   int
	Header   http.Header
	Body     []byte
	StoredAt time.Time
}

// Store is a SQLite-backed response cache bound to one version.
type Store struct {
	db      *sql.DB
	version string
}

// Open opens (creating if needed) the cache database at path.
func Open(path, version string) (*Store, error) {
	if version == "" {
		return nil, errors.New("cache version empty")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping cache: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create cache schema: %w", err)
	}
	return &Store{db: db, version: version}, nil
}

// Version is the cache version entries are written under.
func (s *Store) Version() string { return s.version }

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Activate deletes entries stored under any other version and returns how
// many were removed.
func (s *Store) Activate(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM responses WHERE version <> ?`, s.version)
	if err != nil {
		return 0, fmt.Errorf("purge stale cache: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge stale cache: %w", err)
	}
	if n > 0 {
		log.Printf("offline cache %s: purged %d stale entries", s.version, n)
	}
	return n, nil
}

// Put stores or replaces the response for url.
func (s *Store) Put(ctx context.Context, url string, status int, header http.Header, body []byte) error {
	h, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("encode header: %w", err)
	}
	if body == nil {
		body = []byte{}
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO responses (version, url, status, header, body, stored_at) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(version, url) DO UPDATE SET status = excluded.status, header = excluded.header, body = excluded.body, stored_at = excluded.stored_at`,
		s.version, url, status, string(h), body, time.Now().UTC().Unix())
	if err != nil {
		return fmt.Errorf("store response: %w", err)
	}
	return nil
}

// Get returns the cached response for url under the current version.
func (s *Store) Get(ctx context.Context, url string) (Entry, bool, error) {
	var (
		e        Entry
		header   string
		storedAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT url, status, header, body, stored_at FROM responses WHERE version = ? AND url = ?`,
		s.version, url).Scan(&e.URL, &e.Status, &header, &e.Body, &storedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("read cached response: %w", err)
	}
	if err := json.Unmarshal([]byte(header), &e.Header); err != nil {
		return Entry{}, false, fmt.Errorf("decode cached header: %w", err)
	}
	e.StoredAt = time.Unix(storedAt, 0).UTC()
	return e, true, nil
}

// Count returns the number of entries under the current version.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM responses WHERE version = ?`, s.version).Scan(&n); err != nil {
		return 0, fmt.Errorf("count cached responses: %w", err)
	}
	return n, nil
}
