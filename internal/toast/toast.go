// Package toast implements the transient notification queue shared by the
// dashboard, the CLI and the list managers. A single Queue is created at the
// application root and handed to its users.
package toast

import (
	"fmt"
	"sync"
	"time"
)

// Kind classifies a toast for styling.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
	KindWarning Kind = "warning"
)

// DefaultDuration is used when a Queue is created without WithDuration.
const DefaultDuration = 4 * time.Second

// Toast is one queued notification.
type Toast struct {
	ID        string
	Text      string
	Kind      Kind
	CreatedAt time.Time
	Duration  time.Duration // 0 never expires
}

// Notifier is the publishing side of a Queue.
type Notifier interface {
	Notify(kind Kind, text string, d time.Duration) string
	Success(text string) string
	Error(text string) string
	Info(text string) string
	Warning(text string) string
}

// Listener receives a snapshot of the queue after every change.
type Listener func([]Toast)

// Queue is an ordered list of toasts with per-toast expiry timers.
// Listeners run synchronously while the queue lock is held and must not
// call back into the Queue.
type Queue struct {
	mu        sync.Mutex
	items     []Toast
	timers    map[string]*time.Timer
	listeners map[int]Listener
	order     []int
	nextSub   int
	counter   uint64
	refs      int
	closed    bool
	duration  time.Duration
	now       func() time.Time
}

// Option configures a Queue.
type Option func(*Queue)

// WithDuration sets the default lifetime for Success/Error/Info/Warning.
func WithDuration(d time.Duration) Option {
	return func(q *Queue) { q.duration = d }
}

// WithClock overrides the timestamp source used for ids and CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(q *Queue) { q.now = now }
}

// New creates an empty Queue with one reference held by the caller.
func New(opts ...Option) *Queue {
	q := &Queue{
		timers:    make(map[string]*time.Timer),
		listeners: make(map[int]Listener),
		refs:      1,
		duration:  DefaultDuration,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Notify appends a toast and returns its id. d == 0 keeps it until dismissed.
func (q *Queue) Notify(kind Kind, text string, d time.Duration) string {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.counter++
	now := q.now()
	t := Toast{
		ID:        fmt.Sprintf("toast_%d_%d", now.UnixMilli(), q.counter),
		Text:      text,
		Kind:      kind,
		CreatedAt: now,
		Duration:  d,
	}
	q.items = append(q.items, t)
	if d > 0 && !q.closed {
		id := t.ID
		q.timers[id] = time.AfterFunc(d, func() { q.expire(id) })
	}
	q.emitLocked()
	return t.ID
}

// Success publishes a success toast with the default duration.
func (q *Queue) Success(text string) string { return q.Notify(KindSuccess, text, q.duration) }

// Error publishes an error toast with the default duration.
func (q *Queue) Error(text string) string { return q.Notify(KindError, text, q.duration) }

// Info publishes an info toast with the default duration.
func (q *Queue) Info(text string) string { return q.Notify(KindInfo, text, q.duration) }

// Warning publishes a warning toast with the default duration.
func (q *Queue) Warning(text string) string { return q.Notify(KindWarning, text, q.duration) }

// Dismiss removes the toast with id. Unknown ids are ignored.
func (q *Queue) Dismiss(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if t, ok := q.timers[id]; ok {
		t.Stop()
		delete(q.timers, id)
	}
	if q.removeLocked(id) {
		q.emitLocked()
	}
}

func (q *Queue) expire(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.timers, id)
	if q.removeLocked(id) {
		q.emitLocked()
	}
}

// Clear removes every toast and stops their timers.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.stopTimersLocked()
	if len(q.items) == 0 {
		return
	}
	q.items = nil
	q.emitLocked()
}

// Snapshot returns a copy of the current toasts, oldest first.
func (q *Queue) Snapshot() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]Toast(nil), q.items...)
}

// Subscribe registers l and returns a function that unregisters it.
func (q *Queue) Subscribe(l Listener) (unsubscribe func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	id := q.nextSub
	q.nextSub++
	q.listeners[id] = l
	q.order = append(q.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			q.mu.Lock()
			defer q.mu.Unlock()
			delete(q.listeners, id)
			for i, v := range q.order {
				if v == id {
					q.order = append(q.order[:i], q.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Retain adds a reference. Each Retain must be paired with a Close.
func (q *Queue) Retain() {
	q.mu.Lock()
	q.refs++
	q.mu.Unlock()
}

// Close drops a reference. The last Close stops all pending timers; toasts
// published afterwards never expire on their own.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.refs > 0 {
		q.refs--
	}
	if q.refs == 0 && !q.closed {
		q.closed = true
		q.stopTimersLocked()
	}
}

func (q *Queue) removeLocked(id string) bool {
	for i, t := range q.items {
		if t.ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return true
		}
	}
	return false
}

func (q *Queue) stopTimersLocked() {
	for id, t := range q.timers {
		t.Stop()
		delete(q.timers, id)
	}
}

func (q *Queue) emitLocked() {
	if len(q.order) == 0 {
		return
	}
	snap := append([]Toast(nil), q.items...)
	for _, id := range q.order {
		q.listeners[id](snap)
	}
}

// Discard is a Notifier that drops everything.
type Discard struct{}

func (Discard) Notify(Kind, string, time.Duration) string { return "" }
func (Discard) Success(string) string                     { return "" }
func (Discard) Error(string) string                       { return "" }
func (Discard) Info(string) string                        { return "" }
func (Discard) Warning(string) string                     { return "" }
