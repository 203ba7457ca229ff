// Package sqlite stores storage items in a SQLite database, one row per key
// scoped by origin.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/goliatone/go-erpforms/pkg/storage"
)

// DefaultOrigin scopes rows when no origin is configured.
const DefaultOrigin = "local"

const schema = `
CREATE TABLE IF NOT EXISTS storage_items (
	origin     TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	PRIMARY KEY (origin, key)
)`

// Store is a storage.Backend backed by SQLite.
type Store struct {
	db      *sql.DB
	path    string
	origin  string
	timeout time.Duration
	now     func() time.Time
}

var (
	_ storage.Backend = (*Store)(nil)
	_ storage.Lister  = (*Store)(nil)
)

// Option configures a Store.
type Option func(*Store)

// WithOrigin scopes every row to origin.
func WithOrigin(origin string) Option {
	return func(s *Store) {
		if origin != "" {
			s.origin = origin
		}
	}
}

// WithTimeout bounds each statement.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithClock overrides the clock used for updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Open opens (or creates) the database at path. Use ":memory:" for a
// throwaway database.
func Open(path string, options ...Option) (*Store, error) {
	if path == "" {
		return nil, errors.New("sqlite: path is required")
	}
	dsn := ":memory:"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("sqlite: creating data directory: %w", err)
		}
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}
	if path == ":memory:" {
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	s := &Store{
		db:      db,
		path:    path,
		origin:  DefaultOrigin,
		timeout: 5 * time.Second,
		now:     time.Now,
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}

	ctx, cancel := s.context()
	defer cancel()
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Origin returns the origin rows are scoped to.
func (s *Store) Origin() string {
	return s.origin
}

// GetItem implements storage.Backend.
func (s *Store) GetItem(key string) (string, bool, error) {
	ctx, cancel := s.context()
	defer cancel()

	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM storage_items WHERE origin = ? AND key = ?`,
		s.origin, key,
	).Scan(&value)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", false, nil
	case err != nil:
		return "", false, fmt.Errorf("sqlite: get %q: %w", key, err)
	}
	return value, true, nil
}

// SetItem implements storage.Backend.
func (s *Store) SetItem(key, value string) error {
	ctx, cancel := s.context()
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO storage_items (origin, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(origin, key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, s.origin, key, value, s.now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("sqlite: set %q: %w", key, err)
	}
	return nil
}

// RemoveItem implements storage.Backend.
func (s *Store) RemoveItem(key string) error {
	ctx, cancel := s.context()
	defer cancel()

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM storage_items WHERE origin = ? AND key = ?`,
		s.origin, key,
	); err != nil {
		return fmt.Errorf("sqlite: remove %q: %w", key, err)
	}
	return nil
}

// Keys implements storage.Lister.
func (s *Store) Keys() ([]string, error) {
	ctx, cancel := s.context()
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT key FROM storage_items WHERE origin = ? ORDER BY key`, s.origin)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("sqlite: scan key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list keys: %w", err)
	}
	return keys, nil
}

func (s *Store) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}
