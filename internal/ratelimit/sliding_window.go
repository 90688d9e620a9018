package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/AyushSingh360/Aryan-portfolio/internal/storage"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SlidingWindowLimiter applies the sliding log rule on a Redis sorted set so
// that several processes share one view of each caller.
type SlidingWindowLimiter struct {
	redis  *storage.RedisClient
	limit  int
	window time.Duration
	clock  Clock
}

func NewSlidingWindowLimiter(redis *storage.RedisClient, limit int, window time.Duration, clock Clock) *SlidingWindowLimiter {
	if clock == nil {
		clock = SystemClock
	}

	return &SlidingWindowLimiter{
		redis:  redis,
		limit:  limit,
		window: window,
		clock:  clock,
	}
}

func (s *SlidingWindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	zkey := redisKey("sliding", key)
	now := s.clock.Now()

	pipe := s.redis.Pipeline()

	// Remove entries at or before the window start, timestamps are the scores
	pipe.ZRemRangeByScore(ctx, zkey, "-inf", strconv.FormatInt(now.Add(-s.window).UnixMicro(), 10))

	countCmd := pipe.ZCard(ctx, zkey)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("sliding window check: %w", err)
	}

	if countCmd.Val() >= int64(s.limit) {
		return false, nil
	}

	pipe = s.redis.TxPipeline()
	pipe.ZAdd(ctx, zkey, redis.Z{
		Score:  float64(now.UnixMicro()),
		Member: fmt.Sprintf("%d-%s", now.UnixMicro(), uuid.NewString()),
	})
	pipe.Expire(ctx, zkey, s.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("sliding window record: %w", err)
	}

	return true, nil
}

func (s *SlidingWindowLimiter) Remaining(ctx context.Context, key string) (int, error) {
	now := s.clock.Now()

	// Exclusive lower bound keeps entries strictly younger than the window
	lower := "(" + strconv.FormatInt(now.Add(-s.window).UnixMicro(), 10)
	count, err := s.redis.ZCount(ctx, redisKey("sliding", key), lower, "+inf")
	if err != nil {
		return 0, err
	}

	remaining := s.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

func (s *SlidingWindowLimiter) Limit() int {
	return s.limit
}

func (s *SlidingWindowLimiter) Window() time.Duration {
	return s.window
}

func (s *SlidingWindowLimiter) Reset(ctx context.Context, key string) (time.Time, error) {
	now := s.clock.Now()

	oldest, err := s.redis.ZRangeWithScores(ctx, redisKey("sliding", key), 0, 0)
	if err != nil {
		return time.Time{}, err
	}
	if len(oldest) == 0 {
		return now, nil
	}

	resetTime := time.UnixMicro(int64(oldest[0].Score)).Add(s.window)
	if resetTime.Before(now) {
		return now, nil
	}
	return resetTime, nil
}
