// Package ratelimit throttles outgoing API requests with one token bucket
// per route.
package ratelimit

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Limiter implements token bucket rate limiting keyed by route.
// A Limiter with a non-positive rate never throttles.
type Limiter struct {
	rate float64 // tokens per second, also the burst size

	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	tokens   float64
	lastFill time.Time
}

// New creates a limiter allowing perSecond requests per route.
func New(perSecond int) *Limiter {
	return &Limiter{
		rate:    float64(perSecond),
		buckets: make(map[string]*bucket),
	}
}

// Route derives a bucket key from a method and request path. Numeric path
// segments collapse to ":id" and the query string is dropped, so
// GET /events/7 and GET /events/9 share a bucket.
func Route(method, path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	segs := strings.Split(path, "/")
	for i, s := range segs {
		if s != "" && isDigits(s) {
			segs[i] = ":id"
		}
	}
	return method + " " + strings.Join(segs, "/")
}

// Allow reports whether a request on route may proceed now, consuming a
// token if so.
func (l *Limiter) Allow(route string) bool {
	if l == nil || l.rate <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.getOrCreateBucket(route)
	b.refill(l.rate)

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// Wait blocks until route has a token or ctx is done.
func (l *Limiter) Wait(ctx context.Context, route string) error {
	if l == nil || l.rate <= 0 {
		return nil
	}

	interval := time.Duration(float64(time.Second) / l.rate)
	for {
		if l.Allow(route) {
			return nil
		}

		t := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

// Reset clears the state for route.
func (l *Limiter) Reset(route string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.buckets, route)
}

func (l *Limiter) getOrCreateBucket(route string) *bucket {
	b, ok := l.buckets[route]
	if !ok {
		b = &bucket{
			tokens:   l.rate, // start full
			lastFill: time.Now(),
		}
		l.buckets[route] = b
	}
	return b
}

func (b *bucket) refill(rate float64) {
	now := time.Now()
	b.tokens += now.Sub(b.lastFill).Seconds() * rate
	if b.tokens > rate {
		b.tokens = rate
	}
	b.lastFill = now
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
