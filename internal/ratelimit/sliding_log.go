package ratelimit

import (
	"context"
	"sync"
	"time"
)

// SlidingLogLimiter keeps the arrival times of recent requests per key in
// memory. Entries are pruned lazily on every lookup; idle keys only go away
// through Sweep.
type SlidingLogLimiter struct {
	mu      sync.Mutex
	entries map[string][]time.Time
	limit   int
	window  time.Duration
	clock   Clock
}

func NewSlidingLog(limit int, window time.Duration, clock Clock) *SlidingLogLimiter {
	if clock == nil {
		clock = SystemClock
	}

	return &SlidingLogLimiter{
		entries: make(map[string][]time.Time),
		limit:   limit,
		window:  window,
		clock:   clock,
	}
}

func (s *SlidingLogLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	// The pruned log is stored back even when the request is rejected.
	recent := s.prune(s.entries[key], now)
	if len(recent) >= s.limit {
		s.entries[key] = recent
		return false, nil
	}

	s.entries[key] = append(recent, now)
	return true, nil
}

func (s *SlidingLogLimiter) Remaining(ctx context.Context, key string) (int, error) {
	now := s.clock.Now()

	s.mu.Lock()
	count := s.countRecent(s.entries[key], now)
	s.mu.Unlock()

	remaining := s.limit - count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

func (s *SlidingLogLimiter) Limit() int {
	return s.limit
}

func (s *SlidingLogLimiter) Window() time.Duration {
	return s.window
}

// Returns when the oldest request still inside the window drops out of it
func (s *SlidingLogLimiter) Reset(ctx context.Context, key string) (time.Time, error) {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.entries[key] {
		if now.Sub(t) < s.window {
			return t.Add(s.window), nil
		}
	}
	return now, nil
}

// Sweep prunes every key and removes the ones left without requests.
// It returns the number of keys removed.
func (s *SlidingLogLimiter) Sweep() int {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, times := range s.entries {
		recent := s.prune(times, now)
		if len(recent) == 0 {
			delete(s.entries, key)
			removed++
			continue
		}
		s.entries[key] = recent
	}
	return removed
}

// Len reports the number of tracked keys.
func (s *SlidingLogLimiter) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *SlidingLogLimiter) prune(times []time.Time, now time.Time) []time.Time {
	recent := make([]time.Time, 0, len(times)+1)
	for _, t := range times {
		if now.Sub(t) < s.window {
			recent = append(recent, t)
		}
	}
	return recent
}

func (s *SlidingLogLimiter) countRecent(times []time.Time, now time.Time) int {
	n := 0
	for _, t := range times {
		if now.Sub(t) < s.window {
			n++
		}
	}
	return n
}
