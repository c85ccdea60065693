package ratelimit

import (
	"sync"
	"time"
)

// Limiter enforces a sliding-window request limit per caller identity
type Limiter struct {
	mu      sync.RWMutex
	buckets map[string]*bucket
	maxReqs int
	window  time.Duration
	cleanup *time.Ticker
}

type bucket struct {
	requests []time.Time
	lastSeen time.Time
}

// NewLimiter creates a limiter allowing maxRequests per window per caller
func NewLimiter(maxRequests int, window time.Duration) *Limiter {
	limiter := &Limiter{
		buckets: make(map[string]*bucket),
		maxReqs: maxRequests,
		window:  window,
		cleanup: time.NewTicker(5 * time.Minute),
	}
	go limiter.cleanupOldBuckets()
	return limiter
}

// Allow reports whether the caller may make another request now.
// Unauthenticated callers (empty identity) are not limited here; the
// auth middleware rejects them first.
func (l *Limiter) Allow(caller string) bool {
	if caller == "" {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	b, exists := l.buckets[caller]
	if !exists {
		b = &bucket{requests: []time.Time{}}
		l.buckets[caller] = b
	}

	cutoff := now.Add(-l.window)
	var reqs []time.Time
	for _, t := range b.requests {
		if t.After(cutoff) {
			reqs = append(reqs, t)
		}
	}
	b.requests = reqs
	b.lastSeen = now

	if len(b.requests) >= l.maxReqs {
		return false
	}

	b.requests = append(b.requests, now)
	return true
}

func (l *Limiter) cleanupOldBuckets() {
	for range l.cleanup.C {
		l.mu.Lock()
		now := time.Now()
		staleThreshold := now.Add(-15 * time.Minute)
		for caller, b := range l.buckets {
			if b.lastSeen.Before(staleThreshold) {
				delete(l.buckets, caller)
			}
		}
		l.mu.Unlock()
	}
}

// Stop halts the background cleanup ticker
func (l *Limiter) Stop() {
	l.cleanup.Stop()
}
