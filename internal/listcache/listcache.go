// Package listcache holds fetched lists keyed by name, with a freshness
// window and in-flight load sharing.
//
// A non-forced fetch inside the window is a no-op. A forced fetch always
// starts a load, so a caller that just wrote to the backend reads its own
// write. Entries are never evicted; a stale entry keeps its items until the
// next load replaces them.
package listcache

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/smileynet/storefront/internal/logger"
	"github.com/smileynet/storefront/internal/observability"
)

// DefaultTTL is the freshness window when none is configured.
const DefaultTTL = 30 * time.Second

// DefaultLoadTimeout bounds one shared load when none is configured.
const DefaultLoadTimeout = 30 * time.Second

// forceSuffix separates forced loads from ordinary ones in the flight group.
const forceSuffix = "!force"

// loadPanic carries a loader panic out of the flight goroutine so the waiting
// callers re-raise it.
type loadPanic struct{ value any }

var errLoadPanicked = errors.New("listcache: load panicked")

// Loader fetches the full list for one key.
type Loader[T any] func(ctx context.Context) ([]T, error)

// Entry is the cached state of one key.
type Entry[T any] struct {
	Items         []T
	LastFetchedAt time.Time // zero means never fetched
	Loading       bool
	Err           string
}

// Fetched reports whether a load ever succeeded for this entry.
func (e Entry[T]) Fetched() bool {
	return !e.LastFetchedAt.IsZero()
}

// Option configures a Store.
type Option func(*settings)

type settings struct {
	ttl         time.Duration
	loadTimeout time.Duration
	now         func() time.Time
	log         logrus.FieldLogger
	telemetry   *observability.Config
}

// WithTTL sets the freshness window. Non-positive values keep DefaultTTL.
func WithTTL(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.ttl = d
		}
	}
}

// WithLoadTimeout bounds each shared load. Non-positive values keep
// DefaultLoadTimeout.
func WithLoadTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.loadTimeout = d
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger used for fetch diagnostics.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *settings) {
		if l != nil {
			s.log = l
		}
	}
}

// WithTelemetry records fetch spans and hit/miss counters.
func WithTelemetry(c *observability.Config) Option {
	return func(s *settings) {
		s.telemetry = c
	}
}

type entry[T any] struct {
	items         []T
	lastFetchedAt time.Time
	pending       int
	err           string
}

// Store is a keyed map of entries. It is safe for concurrent use.
type Store[T any] struct {
	mu      sync.Mutex
	entries map[string]*entry[T]
	group   singleflight.Group

	ttl         time.Duration
	loadTimeout time.Duration
	now         func() time.Time
	log         logrus.FieldLogger
	tracer      *observability.Tracer
	metrics     *observability.Metrics
}

// New creates an empty Store.
func New[T any](opts ...Option) *Store[T] {
	cfg := settings{ttl: DefaultTTL, loadTimeout: DefaultLoadTimeout, now: time.Now, log: logger.Discard()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Store[T]{
		entries:     make(map[string]*entry[T]),
		ttl:         cfg.ttl,
		loadTimeout: cfg.loadTimeout,
		now:         cfg.now,
		log:         cfg.log,
		tracer:      cfg.telemetry.Tracer(),
		metrics:     cfg.telemetry.Metrics(),
	}
}

// TTL returns the freshness window.
func (s *Store[T]) TTL() time.Duration {
	return s.ttl
}

// FetchAll loads key unless it is fresh and force is false. Concurrent calls
// for the same key and force flag share one load. The load keeps the first
// caller's values but not its cancellation, and is bounded by the load
// timeout instead. A cancelled caller stops waiting and gets ctx.Err(); the
// load still completes for the others. The returned error is the load error,
// which is also recorded on the entry.
func (s *Store[T]) FetchAll(ctx context.Context, key string, force bool, load Loader[T]) error {
	ctx, span := s.tracer.StartFetch(ctx, key, force)
	defer span.End()

	if !force && s.Fresh(key) {
		s.metrics.RecordCacheFetch(ctx, key, observability.ResultHit)
		return nil
	}

	flight := key
	if force {
		flight += forceSuffix
	}
	ch := s.group.DoChan(flight, func() (v any, err error) {
		defer func() {
			if r := recover(); r != nil {
				v, err = loadPanic{r}, errLoadPanicked
			}
		}()
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.loadTimeout)
		defer cancel()
		return nil, s.run(loadCtx, key, load)
	})
	var (
		err    error
		shared bool
	)
	select {
	case res := <-ch:
		if p, ok := res.Val.(loadPanic); ok {
			panic(p.value)
		}
		err, shared = res.Err, res.Shared
	case <-ctx.Done():
		err = ctx.Err()
	}

	log := logger.WithContext(ctx, s.log).WithFields(logrus.Fields{"key": key, "force": force, "shared": shared})
	if err != nil {
		s.metrics.RecordCacheFetch(ctx, key, observability.ResultError)
		observability.RecordError(span, err, "")
		log.WithError(err).Warn("list fetch failed")
		return err
	}
	s.metrics.RecordCacheFetch(ctx, key, observability.ResultMiss)
	log.Debug("list fetched")
	return nil
}

// run performs one load. The pending count is released even if load panics.
func (s *Store[T]) run(ctx context.Context, key string, load Loader[T]) error {
	s.begin(key)
	var (
		items []T
		err   error
		done  bool
	)
	defer func() { s.finish(key, items, err, done) }()
	items, err = load(ctx)
	done = true
	return err
}

func (s *Store[T]) begin(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entryLocked(key)
	e.pending++
	e.err = ""
}

func (s *Store[T]) finish(key string, items []T, err error, done bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entryLocked(key)
	e.pending--
	switch {
	case !done:
		e.err = "load aborted"
	case err != nil:
		e.err = err.Error()
	default:
		e.items = items
		e.lastFetchedAt = s.now()
		e.err = ""
	}
}

func (s *Store[T]) entryLocked(key string) *entry[T] {
	e, ok := s.entries[key]
	if !ok {
		e = &entry[T]{}
		s.entries[key] = e
	}
	return e
}

// Fresh reports whether key was fetched less than TTL ago.
func (s *Store[T]) Fresh(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok || e.lastFetchedAt.IsZero() {
		return false
	}
	return s.now().Sub(e.lastFetchedAt) < s.ttl
}

// Entry returns a snapshot of key. Unknown keys yield the zero Entry.
func (s *Store[T]) Entry(key string) Entry[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return Entry[T]{}
	}
	return Entry[T]{
		Items:         slices.Clone(e.items),
		LastFetchedAt: e.lastFetchedAt,
		Loading:       e.pending > 0,
		Err:           e.err,
	}
}

// Lookup returns the first cached item of key matching pred. It never loads.
func (s *Store[T]) Lookup(key string, pred func(T) bool) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	e, ok := s.entries[key]
	if !ok {
		return zero, false
	}
	for _, it := range e.items {
		if pred(it) {
			return it, true
		}
	}
	return zero, false
}

// Invalidate marks key stale so the next fetch loads. Items are kept.
func (s *Store[T]) Invalidate(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[key]; ok {
		e.lastFetchedAt = time.Time{}
	}
}

// InvalidatePrefix marks every key starting with prefix stale.
func (s *Store[T]) InvalidatePrefix(prefix string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, e := range s.entries {
		if strings.HasPrefix(k, prefix) {
			e.lastFetchedAt = time.Time{}
		}
	}
}

// Keys returns the known keys in sorted order.
func (s *Store[T]) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Key builds a cache key from a namespace and query parameters. Without
// params it is the namespace itself; otherwise the params are hashed so keys
// stay short and stable.
func Key(namespace string, params ...any) string {
	if len(params) == 0 {
		return namespace
	}
	d := xxhash.New()
	for i, p := range params {
		if i > 0 {
			_, _ = d.WriteString("\x00")
		}
		_, _ = d.WriteString(fmt.Sprint(p))
	}
	return namespace + "#" + hex.EncodeToString(d.Sum(nil))
}
