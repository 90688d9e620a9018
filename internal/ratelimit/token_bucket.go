package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// TokenBucket holds one x/time/rate limiter per key. The bucket holds limit
// tokens and refills completely over one window.
type TokenBucket struct {
	mu       sync.Mutex
	entries  map[string]*bucketEntry
	capacity int
	window   time.Duration
	refill   rate.Limit
	clock    Clock
}

type bucketEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func NewTokenBucket(capacity int, window time.Duration, clock Clock) *TokenBucket {
	if clock == nil {
		clock = SystemClock
	}

	return &TokenBucket{
		entries:  make(map[string]*bucketEntry),
		capacity: capacity,
		window:   window,
		refill:   rate.Limit(float64(capacity) / window.Seconds()),
		clock:    clock,
	}
}

func (t *TokenBucket) get(key string, now time.Time) *rate.Limiter {
	if ent, ok := t.entries[key]; ok {
		ent.lastSeen = now
		return ent.lim
	}

	lim := rate.NewLimiter(t.refill, t.capacity)
	t.entries[key] = &bucketEntry{lim: lim, lastSeen: now}
	return lim
}

func (t *TokenBucket) Allow(ctx context.Context, key string) (bool, error) {
	now := t.clock.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	return t.get(key, now).AllowN(now, 1), nil
}

func (t *TokenBucket) Remaining(ctx context.Context, key string) (int, error) {
	now := t.clock.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	ent, ok := t.entries[key]
	if !ok {
		return t.capacity, nil
	}

	tokens := ent.lim.TokensAt(now)
	if tokens < 0 {
		return 0, nil
	}
	return int(tokens), nil
}

func (t *TokenBucket) Limit() int {
	return t.capacity
}

func (t *TokenBucket) Window() time.Duration {
	return t.window
}

// Returns the time at which the bucket is full again
func (t *TokenBucket) Reset(ctx context.Context, key string) (time.Time, error) {
	now := t.clock.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	ent, ok := t.entries[key]
	if !ok {
		return now, nil
	}

	missing := float64(t.capacity) - ent.lim.TokensAt(now)
	if missing <= 0 {
		return now, nil
	}

	return now.Add(time.Duration(missing / float64(t.refill) * float64(time.Second))), nil
}

// Sweep drops buckets untouched for a whole window, by then they are full
// and indistinguishable from a fresh one.
func (t *TokenBucket) Sweep() int {
	cutoff := t.clock.Now().Add(-t.window)

	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for k, ent := range t.entries {
		if !ent.lastSeen.After(cutoff) {
			delete(t.entries, k)
			removed++
		}
	}
	return removed
}
