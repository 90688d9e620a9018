package ratelimit

import (
	"fmt"
	"time"

	"github.com/AyushSingh360/Aryan-portfolio/internal/storage"
)

// NewLimiter builds the limiter named by algorithm. redis may be nil when only
// in-memory algorithms are used.
func NewLimiter(redis *storage.RedisClient, algorithm string, limit int, window time.Duration, clock Clock) (Limiter, error) {
	switch algorithm {
	case "sliding_log", "":
		return NewSlidingLog(limit, window, clock), nil
	case "token_bucket":
		return NewTokenBucket(limit, window, clock), nil
	case "sliding_window", "fixed_window":
		if redis == nil {
			return nil, fmt.Errorf("rate limit algorithm %s requires redis", algorithm)
		}
		if algorithm == "sliding_window" {
			return NewSlidingWindowLimiter(redis, limit, window, clock), nil
		}
		return NewFixedWindow(redis, limit, window, clock), nil
	default:
		return nil, fmt.Errorf("unknown rate limit algorithm: %s", algorithm)
	}
}
