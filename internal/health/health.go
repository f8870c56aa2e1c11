// Package health tracks whether the catalog backend is reachable.
package health

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/smileynet/storefront/internal/api"
	"github.com/smileynet/storefront/internal/logger"
)

// State is the last known backend state.
type State string

const (
	StateUnknown State = "unknown"
	StateUp      State = "UP"
	StateDown    State = "DOWN"
)

// Status is a snapshot of the monitor.
type Status struct {
	State     State
	CheckedAt time.Time // zero until the first check
	Err       string
}

// Checker probes the backend.
type Checker interface {
	Check(ctx context.Context) (api.HealthStatus, error)
}

// Gate reports whether polling is allowed. The monitor only polls while a
// token is stored.
type Gate interface {
	Has() bool
}

// Monitor polls a Checker and keeps the latest Status.
type Monitor struct {
	checker  Checker
	gate     Gate
	interval time.Duration
	now      func() time.Time
	log      logrus.FieldLogger

	mu     sync.Mutex
	status Status
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) { m.now = now }
}

// WithLogger sets the logger for state changes.
func WithLogger(log logrus.FieldLogger) Option {
	return func(m *Monitor) { m.log = log }
}

// New creates a Monitor. A nil gate always allows polling.
func New(checker Checker, gate Gate, interval time.Duration, opts ...Option) *Monitor {
	m := &Monitor{
		checker:  checker,
		gate:     gate,
		interval: interval,
		now:      time.Now,
		log:      logger.Discard(),
		status:   Status{State: StateUnknown},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Interval returns the polling interval.
func (m *Monitor) Interval() time.Duration {
	return m.interval
}

// Status returns the latest snapshot.
func (m *Monitor) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Enabled reports whether the gate currently allows polling.
func (m *Monitor) Enabled() bool {
	return m.gate == nil || m.gate.Has()
}

// Check probes the backend once and records the result.
func (m *Monitor) Check(ctx context.Context) Status {
	hs, err := m.checker.Check(ctx)
	next := Status{State: StateDown, CheckedAt: m.now()}
	switch {
	case err != nil:
		next.Err = err.Error()
	case hs.Up():
		next.State = StateUp
	default:
		next.Err = "status " + hs.Status
	}

	m.mu.Lock()
	prev := m.status.State
	m.status = next
	m.mu.Unlock()

	if prev != next.State {
		entry := logger.WithContext(ctx, m.log).WithField("state", next.State)
		if next.State == StateUp {
			entry.Info("backend reachable")
		} else {
			entry.WithField("error", next.Err).Warn("backend unreachable")
		}
	}
	return next
}

// Run polls every interval until ctx is done, calling onCheck after each
// probe. Ticks while the gate is closed are skipped.
func (m *Monitor) Run(ctx context.Context, onCheck func(Status)) {
	if m.interval <= 0 {
		return
	}
	poll := func() {
		if !m.Enabled() {
			return
		}
		st := m.Check(ctx)
		if onCheck != nil {
			onCheck(st)
		}
	}
	poll()

	t := time.NewTicker(m.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			poll()
		}
	}
}
