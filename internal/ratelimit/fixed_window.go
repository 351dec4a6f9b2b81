// Package ratelimit implements per-client admission control for the intake
// pipeline.
package ratelimit

import (
	"sync"
	"time"
)

// FixedWindowLimiter throttles callers with a fixed-window counter per client
// key. State lives in memory only; it is owned by whoever constructs the
// limiter and is never persisted across restarts.
type FixedWindowLimiter struct {
	mu          sync.Mutex
	maxRequests int
	window      time.Duration
	now         func() time.Time
	entries     map[string]*windowEntry
}

type windowEntry struct {
	count       int
	windowStart time.Time
}

// NewFixedWindowLimiter builds a limiter allowing maxRequests per window for
// each client key.
func NewFixedWindowLimiter(maxRequests int, window time.Duration) *FixedWindowLimiter {
	if maxRequests <= 0 {
		maxRequests = 5
	}
	if window <= 0 {
		window = time.Minute
	}
	return &FixedWindowLimiter{
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
		entries:     make(map[string]*windowEntry),
	}
}

// Admit records one request for clientKey and reports whether it fits in the
// current window. A rejected request still counts against the window.
func (l *FixedWindowLimiter) Admit(clientKey string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entry, ok := l.entries[clientKey]
	if !ok || now.Sub(entry.windowStart) > l.window {
		entry = &windowEntry{windowStart: now}
		l.entries[clientKey] = entry
	}

	entry.count++
	return entry.count <= l.maxRequests
}

// Window reports the configured window length.
func (l *FixedWindowLimiter) Window() time.Duration {
	return l.window
}

// WithClock overrides the limiter's time source. Intended for tests.
func (l *FixedWindowLimiter) WithClock(now func() time.Time) *FixedWindowLimiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
	return l
}
