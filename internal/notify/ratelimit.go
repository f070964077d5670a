package notify

import (
	"sync"
	"time"
)

// RateLimiter caps the number of events per sliding interval
type RateLimiter struct {
	interval  time.Duration
	maxEvents int
	events    []time.Time
	mu        sync.Mutex
	now       func() time.Time
}

// NewRateLimiter creates a new rate limiter. A non-positive interval or
// maxEvents disables limiting.
func NewRateLimiter(interval time.Duration, maxEvents int) *RateLimiter {
	return &RateLimiter{
		interval:  interval,
		maxEvents: maxEvents,
		events:    make([]time.Time, 0, max(maxEvents, 0)),
		now:       time.Now,
	}
}

// Allow checks if an event is allowed and records it when it is
func (r *RateLimiter) Allow() bool {
	if r == nil || r.interval <= 0 || r.maxEvents <= 0 {
		return true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	cutoff := now.Add(-r.interval)

	// Drop events outside the window
	kept := r.events[:0]
	for _, t := range r.events {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	r.events = kept

	if len(r.events) >= r.maxEvents {
		return false
	}

	r.events = append(r.events, now)
	return true
}
