package token

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// record is the on-disk form of a stored token.
type record struct {
	Token   string    `json:"token"`
	SavedAt time.Time `json:"saved_at"`
}

// FileStore persists the token as a JSON file under a base directory.
type FileStore struct {
	baseDir string
	key     string
	clock   clock
}

// NewFileStore creates a FileStore that saves the token for key under baseDir.
func NewFileStore(baseDir, key string, opts ...StoreOption) (*FileStore, error) {
	s := &FileStore{baseDir: baseDir, key: key, clock: newClock(opts)}
	if _, err := s.path(); err != nil {
		return nil, err
	}
	return s, nil
}

// Set writes the token, replacing any previous value.
func (s *FileStore) Set(tok string) error {
	p, err := s.path()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.baseDir, 0o700); err != nil {
		return fmt.Errorf("token: creating directory: %w", err)
	}

	data, err := json.MarshalIndent(record{Token: tok, SavedAt: s.clock.time().UTC()}, "", "  ")
	if err != nil {
		return fmt.Errorf("token: marshaling: %w", err)
	}

	if err := os.WriteFile(p, data, 0o600); err != nil {
		return fmt.Errorf("token: writing %s: %w", p, err)
	}
	return nil
}

// Get returns the stored token. An expired token is removed and ErrExpired returned.
func (s *FileStore) Get() (string, error) {
	p, err := s.path()
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("token: reading %s: %w", p, err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return "", fmt.Errorf("token: parsing %s: %w", p, err)
	}
	if rec.Token == "" {
		return "", ErrNotFound
	}
	if expired(rec.Token, s.clock.time()) {
		_ = s.Remove()
		return "", ErrExpired
	}
	return rec.Token, nil
}

// Has reports whether a usable token is stored.
func (s *FileStore) Has() bool {
	_, err := s.Get()
	return err == nil
}

// Remove deletes the stored token. Removing a missing token is not an error.
func (s *FileStore) Remove() error {
	p, err := s.path()
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("token: removing %s: %w", p, err)
	}
	return nil
}

// path returns the filesystem path for the token file.
// It rejects keys that are empty, dot-segments, or contain path separators.
func (s *FileStore) path() (string, error) {
	id := s.key
	if id == "" || id == "." || id == ".." || id != filepath.Base(id) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, id)
	}
	return filepath.Join(s.baseDir, id+".json"), nil
}
