package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/AyushSingh360/Aryan-portfolio/internal/storage"
	"github.com/redis/go-redis/v9"
)

type FixedWindowLimiter struct {
	redis  *storage.RedisClient
	limit  int
	window time.Duration
	clock  Clock
}

func NewFixedWindow(redis *storage.RedisClient, limit int, window time.Duration, clock Clock) *FixedWindowLimiter {
	if clock == nil {
		clock = SystemClock
	}

	return &FixedWindowLimiter{
		redis:  redis,
		limit:  limit,
		window: window,
		clock:  clock,
	}
}

func (f *FixedWindowLimiter) currentWindow() int64 {
	return f.clock.Now().UnixMilli() / f.window.Milliseconds()
}

func (f *FixedWindowLimiter) key(id string, window int64) string {
	return fmt.Sprintf("%s:%d", redisKey("fixed", id), window)
}

func (f *FixedWindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := f.key(key, f.currentWindow())

	count, err := f.redis.Incr(ctx, redisKey)
	if err != nil {
		return false, fmt.Errorf("fixed window increment: %w", err)
	}

	if count == 1 {
		if err := f.redis.Expire(ctx, redisKey, f.window); err != nil {
			return false, fmt.Errorf("fixed window expire: %w", err)
		}
	}

	return count <= int64(f.limit), nil
}

func (f *FixedWindowLimiter) Remaining(ctx context.Context, key string) (int, error) {
	val, err := f.redis.Get(ctx, f.key(key, f.currentWindow()))
	if errors.Is(err, redis.Nil) {
		return f.limit, nil
	}
	if err != nil {
		return 0, err
	}

	count, _ := strconv.Atoi(val)
	remaining := f.limit - count
	if remaining < 0 {
		remaining = 0
	}

	return remaining, nil
}

func (f *FixedWindowLimiter) Limit() int {
	return f.limit
}

func (f *FixedWindowLimiter) Window() time.Duration {
	return f.window
}

// Returns the start of the next window
func (f *FixedWindowLimiter) Reset(ctx context.Context, key string) (time.Time, error) {
	next := (f.currentWindow() + 1) * f.window.Milliseconds()
	return time.UnixMilli(next), nil
}
