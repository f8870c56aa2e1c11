package token

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS tokens(
  key        TEXT PRIMARY KEY,
  value      TEXT NOT NULL,
  saved_at   INTEGER NOT NULL,
  expires_at INTEGER NOT NULL DEFAULT 0
);`

// DBFile is the database file name created under the token directory.
const DBFile = "storefront.db"

// SQLStore persists the token in an embedded SQLite database.
type SQLStore struct {
	db    *sqlx.DB
	key   string
	clock clock
}

// OpenSQLStore opens (creating if needed) dir/storefront.db and returns a
// store for key. Callers should Close the store when done.
func OpenSQLStore(dir, key string, opts ...StoreOption) (*SQLStore, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("token: creating directory: %w", err)
	}
	db, err := sqlx.Open("sqlite", filepath.Join(dir, DBFile))
	if err != nil {
		return nil, fmt.Errorf("token: opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("token: opening database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("token: creating schema: %w", err)
	}
	return NewSQLStore(db, key, opts...), nil
}

// NewSQLStore wraps an already-open database. The tokens table must exist.
func NewSQLStore(db *sqlx.DB, key string, opts ...StoreOption) *SQLStore {
	return &SQLStore{db: db, key: key, clock: newClock(opts)}
}

type tokenRow struct {
	Value     string `db:"value"`
	SavedAt   int64  `db:"saved_at"`
	ExpiresAt int64  `db:"expires_at"`
}

// Set upserts the token.
func (s *SQLStore) Set(tok string) error {
	var exp int64
	if t, ok := Expiry(tok); ok {
		exp = t.Unix()
	}
	_, err := s.db.Exec(`
		INSERT INTO tokens(key, value, saved_at, expires_at) VALUES(?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, saved_at = excluded.saved_at, expires_at = excluded.expires_at
	`, s.key, tok, s.clock.time().Unix(), exp)
	if err != nil {
		return fmt.Errorf("token: saving: %w", err)
	}
	return nil
}

// Get returns the stored token. An expired token is removed and ErrExpired returned.
func (s *SQLStore) Get() (string, error) {
	var row tokenRow
	err := s.db.Get(&row, `SELECT value, saved_at, expires_at FROM tokens WHERE key = ?`, s.key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("token: loading: %w", err)
	}
	if row.ExpiresAt > 0 && s.clock.time().Unix() >= row.ExpiresAt {
		_ = s.Remove()
		return "", ErrExpired
	}
	return row.Value, nil
}

// Has reports whether a usable token is stored.
func (s *SQLStore) Has() bool {
	_, err := s.Get()
	return err == nil
}

// Remove deletes the stored token.
func (s *SQLStore) Remove() error {
	if _, err := s.db.Exec(`DELETE FROM tokens WHERE key = ?`, s.key); err != nil {
		return fmt.Errorf("token: removing: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
