// Package token persists the backend bearer token between runs.
package token

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNotFound indicates no token is stored.
	ErrNotFound = errors.New("token: not found")
	// ErrExpired indicates the stored token's exp claim is in the past.
	ErrExpired = errors.New("token: expired")
	// ErrInvalidKey indicates a storage key is empty or contains path components.
	ErrInvalidKey = errors.New("token: invalid key")
)

// Store holds a single token under a fixed key.
type Store interface {
	Has() bool
	Get() (string, error)
	Set(token string) error
	Remove() error
}

// Expiry returns the exp claim of a JWT without verifying its signature.
// ok is false for opaque tokens or tokens without exp.
func Expiry(tok string) (exp time.Time, ok bool) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tok, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// Options are passed to a backend Factory.
type Options struct {
	Dir string // storage directory
	Key string // token key, e.g. "authToken"
	Now func() time.Time
}

// Factory creates a Store for a backend.
type Factory func(Options) (Store, error)

// Registry maps backend names to factories.
// It is not safe for concurrent use; registration should happen at startup.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns a Registry with the "file" and "sqlite" backends registered.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.Register("file", func(o Options) (Store, error) {
		s, err := NewFileStore(o.Dir, o.Key, WithClock(o.Now))
		if err != nil {
			return nil, err
		}
		return s, nil
	})
	r.Register("sqlite", func(o Options) (Store, error) {
		s, err := OpenSQLStore(o.Dir, o.Key, WithClock(o.Now))
		if err != nil {
			return nil, err
		}
		return s, nil
	})
	return r
}

// Register adds a named backend factory. Overwrites if name already exists.
// Panics if name is empty or f is nil (programmer error).
func (r *Registry) Register(name string, f Factory) {
	if name == "" {
		panic("token: Register called with empty name")
	}
	if f == nil {
		panic("token: Register called with nil factory")
	}
	r.factories[name] = f
}

// Open instantiates the backend called name.
func (r *Registry) Open(name string, o Options) (Store, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, &UnknownBackendError{Name: name, Available: r.Backends()}
	}
	s, err := f(o)
	if err != nil {
		return nil, fmt.Errorf("token backend %q: %w", name, err)
	}
	return s, nil
}

// Backends returns registered backend names in sorted order.
func (r *Registry) Backends() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UnknownBackendError indicates a backend name is not registered.
type UnknownBackendError struct {
	Name      string
	Available []string
}

func (e *UnknownBackendError) Error() string {
	return fmt.Sprintf("unknown token backend %q (available: %s)", e.Name, strings.Join(e.Available, ", "))
}

// StoreOption configures a FileStore or SQLStore.
type StoreOption func(*clock)

type clock struct {
	now func() time.Time
}

func (c clock) time() time.Time {
	if c.now == nil {
		return time.Now()
	}
	return c.now()
}

// WithClock overrides the time source used for expiry checks. nil keeps time.Now.
func WithClock(now func() time.Time) StoreOption {
	return func(c *clock) { c.now = now }
}

func newClock(opts []StoreOption) clock {
	var c clock
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// expired reports whether tok carries an exp claim at or before now.
func expired(tok string, now time.Time) bool {
	exp, ok := Expiry(tok)
	return ok && !now.Before(exp)
}
