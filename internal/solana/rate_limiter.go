package solana

import (
	"context"
	"sync"
	"time"
)

// RateLimiter bounds outbound RPC calls with a sliding window. Public RPC
// endpoints ban callers that burst past their request budget.
type RateLimiter struct {
	mu       sync.Mutex
	requests []time.Time
	limit    int
	window   time.Duration
}

// NewRateLimiter creates a rate limiter allowing limit requests per window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		requests: make([]time.Time, 0, limit),
		limit:    limit,
		window:   window,
	}
}

// Allow reports whether a request may proceed right now and records it if so.
func (r *RateLimiter) Allow() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-r.window)

	// Filter out old requests
	recent := r.requests[:0]
	for _, t := range r.requests {
		if t.After(windowStart) {
			recent = append(recent, t)
		}
	}
	r.requests = recent

	if len(r.requests) >= r.limit {
		return false
	}

	r.requests = append(r.requests, now)
	return true
}

// Wait blocks until a request slot is available or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		if r.Allow() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.window / time.Duration(r.limit)):
		}
	}
}
