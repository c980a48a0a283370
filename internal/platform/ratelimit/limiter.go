// Package ratelimit bounds how many requests one client may make within a
// sliding window. State is process-local.
package ratelimit

import (
	"sync"
	"time"
)

// Result describes the outcome of a single Allow call.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// Limiter is an in-memory sliding window limiter keyed by an arbitrary
// string, typically the client IP.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*slidingWindow
	limit   int
	window  time.Duration
	clock   func() time.Time
}

type slidingWindow struct {
	timestamps []time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock sets the clock function for testability.
func WithClock(clock func() time.Time) Option {
	return func(l *Limiter) {
		l.clock = clock
	}
}

// NewLimiter allows limit requests per key within window.
func NewLimiter(limit int, window time.Duration, opts ...Option) *Limiter {
	l := &Limiter{
		windows: make(map[string]*slidingWindow),
		limit:   limit,
		window:  window,
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow records a request for key if it fits in the window.
func (l *Limiter) Allow(key string) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	sw := l.windows[key]
	if sw == nil {
		sw = &slidingWindow{}
		l.windows[key] = sw
	}
	sw.cleanup(now, l.window)

	if len(sw.timestamps) < l.limit {
		sw.timestamps = append(sw.timestamps, now)
		return Result{
			Allowed:   true,
			Limit:     l.limit,
			Remaining: l.limit - len(sw.timestamps),
			ResetAt:   sw.timestamps[0].Add(l.window),
		}
	}

	resetAt := now.Add(l.window)
	if len(sw.timestamps) > 0 {
		resetAt = sw.timestamps[0].Add(l.window)
	}
	return Result{
		Allowed:    false,
		Limit:      l.limit,
		ResetAt:    resetAt,
		RetryAfter: resetAt.Sub(now),
	}
}

// Prune drops keys whose windows have fully expired and returns how many
// remain.
func (l *Limiter) Prune() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	for key, sw := range l.windows {
		sw.cleanup(now, l.window)
		if len(sw.timestamps) == 0 {
			delete(l.windows, key)
		}
	}
	return len(l.windows)
}

func (sw *slidingWindow) cleanup(now time.Time, window time.Duration) {
	cutoff := now.Add(-window)
	i := 0
	for ; i < len(sw.timestamps); i++ {
		if sw.timestamps[i].After(cutoff) {
			break
		}
	}
	sw.timestamps = sw.timestamps[i:]
}
