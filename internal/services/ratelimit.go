package services

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	PressWindow = time.Second
	PressCap    = 10
)

type rateBucket struct {
	count       int
	windowStart time.Time
}

// RateLimiter is a per-connection fixed-window counter. It is coarse: up to
// twice the cap can pass across a window boundary, which is fine for
// anti-spam. State lives only in memory and only throttles, never
// authorizes, so losing it on restart costs nothing.
type RateLimiter struct {
	mu      sync.Mutex
	clock   clockwork.Clock
	window  time.Duration
	cap     int
	buckets map[string]*rateBucket
}

func NewRateLimiter(window time.Duration, cap int, clock clockwork.Clock) *RateLimiter {
	return &RateLimiter{
		clock:   clock,
		window:  window,
		cap:     cap,
		buckets: make(map[string]*rateBucket),
	}
}

func (rl *RateLimiter) Allow(connID string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()

	b, ok := rl.buckets[connID]
	if !ok {
		rl.buckets[connID] = &rateBucket{count: 1, windowStart: now}
		return true
	}

	if now.Sub(b.windowStart) > rl.window {
		b.count = 0
		b.windowStart = now
	}

	b.count++
	return b.count <= rl.cap
}

// Forget drops a connection's bucket on disconnect.
func (rl *RateLimiter) Forget(connID string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.buckets, connID)
}

// Prune removes buckets idle longer than maxIdle, bounding the table in
// long-running processes even when Forget was never reached.
func (rl *RateLimiter) Prune(maxIdle time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()
	for connID, b := range rl.buckets {
		if now.Sub(b.windowStart) > maxIdle {
			delete(rl.buckets, connID)
		}
	}
}
