package middleware

import (
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/AyushSingh360/Aryan-portfolio/internal/ratelimit"
	"github.com/AyushSingh360/Aryan-portfolio/internal/service"
	"github.com/gin-gonic/gin"
)

const (
	callerIDKey     = "caller_id"
	unknownCallerID = "unknown"
)

// CallerID derives the rate limit key from forwarding headers: the whole
// X-Forwarded-For value, then X-Real-IP, then "unknown". Repeated
// X-Forwarded-For lines are joined the way a fetch Headers object joins them.
func CallerID(r *http.Request) string {
	if xff := strings.TrimSpace(strings.Join(r.Header.Values("X-Forwarded-For"), ", ")); xff != "" {
		return xff
	}

	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}

	return unknownCallerID
}

// GetCallerID returns the identifier stored by RateLimit.
func GetCallerID(c *gin.Context) string {
	return c.GetString(callerIDKey)
}

func RateLimit(limiter ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := CallerID(c.Request)
		c.Set(callerIDKey, key)

		ctx := c.Request.Context()
		allowed, err := limiter.Allow(ctx, key)
		if err != nil {
			log.Printf("[%s] rate limit check failed: %v", c.GetString(requestIDKey), err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"message": service.ErrInternal.Message,
			})
			return
		}

		remaining, _ := limiter.Remaining(ctx, key)
		resetTime, _ := limiter.Reset(ctx, key)

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			retryAfter := int(time.Until(resetTime).Seconds())
			if retryAfter < 0 {
				retryAfter = 0
			}

			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message": service.ErrRateLimited.Message,
			})
			return
		}

		c.Next()
	}
}
