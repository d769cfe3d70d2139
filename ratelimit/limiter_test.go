package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestAllow_Unlimited(t *testing.T) {
	l := New(0)
	for i := 0; i < 100; i++ {
		if !l.Allow("GET /events") {
			t.Fatal("a zero-rate limiter should always allow")
		}
	}

	var nilLimiter *Limiter
	if !nilLimiter.Allow("GET /events") {
		t.Fatal("a nil limiter should always allow")
	}
}

func TestAllow_RateLimited(t *testing.T) {
	l := New(2)
	route := "GET /events"

	// First two should be allowed (bucket starts full).
	if !l.Allow(route) {
		t.Fatal("first call should be allowed")
	}
	if !l.Allow(route) {
		t.Fatal("second call should be allowed")
	}
	if l.Allow(route) {
		t.Fatal("third call should be denied")
	}

	// Other routes have their own bucket.
	if !l.Allow("POST /events") {
		t.Fatal("a different route should be allowed")
	}
}

func TestAllow_Refills(t *testing.T) {
	l := New(10)
	route := "GET /events"

	for i := 0; i < 10; i++ {
		l.Allow(route)
	}
	if l.Allow(route) {
		t.Fatal("should be denied after exhausting bucket")
	}

	time.Sleep(200 * time.Millisecond)

	if !l.Allow(route) {
		t.Fatal("should be allowed after refill")
	}
}

func TestWait_ContextCancelled(t *testing.T) {
	l := New(1)
	route := "DELETE /events/:id"
	l.Allow(route)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := l.Wait(ctx, route); err == nil {
		t.Fatal("Wait should return error when context is cancelled")
	}
}

func TestWait_EventuallyAllowed(t *testing.T) {
	l := New(20) // ~50ms per token
	route := "GET /events"
	for i := 0; i < 20; i++ {
		l.Allow(route)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	start := time.Now()
	if err := l.Wait(ctx, route); err != nil {
		t.Fatalf("Wait should succeed, got %v", err)
	}
	if time.Since(start) < 20*time.Millisecond {
		t.Fatal("Wait should have blocked for at least some time")
	}
}

func TestReset(t *testing.T) {
	l := New(1)
	route := "GET /events"

	l.Allow(route)
	if l.Allow(route) {
		t.Fatal("should be denied")
	}

	l.Reset(route)

	if !l.Allow(route) {
		t.Fatal("should be allowed after reset")
	}

	var nilLimiter *Limiter
	nilLimiter.Reset(route)
}

func TestRoute(t *testing.T) {
	tests := []struct {
		method, path, want string
	}{
		{"GET", "/events?page=1&perPage=25", "GET /events"},
		{"GET", "/events/42", "GET /events/:id"},
		{"PATCH", "/events/7", "PATCH /events/:id"},
		{"GET", "/users/authorize?ip=1.2.3.4", "GET /users/authorize"},
	}
	for _, tt := range tests {
		if got := Route(tt.method, tt.path); got != tt.want {
			t.Errorf("Route(%q, %q) = %q, want %q", tt.method, tt.path, got, tt.want)
		}
	}
}

func TestConcurrentAccess(t *testing.T) {
	l := New(100)
	route := "GET /events"

	var wg sync.WaitGroup
	allowed := make(chan bool, 200)

	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			allowed <- l.Allow(route)
		}()
	}

	wg.Wait()
	close(allowed)

	trueCount := 0
	for v := range allowed {
		if v {
			trueCount++
		}
	}

	if trueCount > 101 {
		t.Fatalf("expected at most ~100 allowed, got %d", trueCount)
	}
	if trueCount < 90 {
		t.Fatalf("expected at least 90 allowed (timing), got %d", trueCount)
	}
}
