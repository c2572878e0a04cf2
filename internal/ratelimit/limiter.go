// Package ratelimit implements per-chat sliding-window admission control.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter admits at most maxRequests calls per chat in any trailing window.
// It is safe for concurrent use; the prune/check/append sequence for a call
// is atomic under the lock, so two racing callers can never both take the
// last remaining slot.
type Limiter struct {
	mu      sync.Mutex
	buckets map[int64][]time.Time

	maxRequests int
	window      time.Duration
	now         func() time.Time
}

// New creates a limiter admitting maxRequests per window per chat.
func New(maxRequests int, window time.Duration) *Limiter {
	return &Limiter{
		buckets:     make(map[int64][]time.Time),
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
	}
}

// Allow reports whether the chat may make a request now. An admitted request
// consumes a slot in the chat's window; a rejected one does not.
func (l *Limiter) Allow(chatID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	kept := l.buckets[chatID][:0]
	for _, t := range l.buckets[chatID] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= l.maxRequests {
		l.buckets[chatID] = kept
		return false
	}

	l.buckets[chatID] = append(kept, now)
	return true
}
