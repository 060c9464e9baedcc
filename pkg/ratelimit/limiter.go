package ratelimit

import (
	"time"
)

// Metrics records rate limit outcomes. Implementations can use Prometheus
// or a no-op collector.
type Metrics interface {
	RecordAllowed(endpoint string)
	RecordDenied(endpoint string)
}

// NoopMetrics discards all observations.
type NoopMetrics struct{}

func (NoopMetrics) RecordAllowed(string) {}
func (NoopMetrics) RecordDenied(string)  {}

// Limiter applies sliding-window policies over a shared MemoryStore.
type Limiter struct {
	store   *MemoryStore
	clock   Clock
	metrics Metrics
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock replaces the system clock, for tests.
func WithClock(c Clock) Option {
	return func(l *Limiter) { l.clock = c }
}

// WithMetrics attaches a metrics collector.
func WithMetrics(m Metrics) Option {
	return func(l *Limiter) { l.metrics = m }
}

// NewLimiter creates a Limiter backed by store.
func NewLimiter(store *MemoryStore, opts ...Option) *Limiter {
	l := &Limiter{
		store:   store,
		clock:   &SystemClock{},
		metrics: NoopMetrics{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow checks one request for key under policy and records it when
// admitted. endpoint labels the metrics only; callers typically fold the
// endpoint into the key as well.
func (l *Limiter) Allow(endpoint, key string, p Policy) *Decision {
	now := l.clock.Now()
	cutoff := now.Add(-p.Window)

	allowed, count, oldest := l.store.CheckAndAdd(key, now, cutoff, p.Limit)

	// The window effectively resets when the oldest counted request ages out.
	resetAt := now.Add(p.Window)
	if !oldest.IsZero() {
		resetAt = oldest.Add(p.Window)
	}
	retryAfter := resetAt.Sub(now)
	if retryAfter < 0 {
		retryAfter = 0
	}

	d := &Decision{
		Key:     key,
		Allowed: allowed,
		Limit:   p.Limit,
		ResetAt: resetAt,
	}
	if allowed {
		d.Remaining = p.Limit - count
		l.metrics.RecordAllowed(endpoint)
	} else {
		d.RetryAfter = retryAfter
		l.metrics.RecordDenied(endpoint)
	}
	return d
}

// Cleanup drops request entries older than the given horizon. Run it
// periodically with the longest configured window as the horizon.
func (l *Limiter) Cleanup(horizon time.Duration) int {
	return l.store.Cleanup(l.clock.Now().Add(-horizon))
}

// KeyCount reports the number of tracked callers, for gauges.
func (l *Limiter) KeyCount() int {
	return l.store.KeyCount()
}
