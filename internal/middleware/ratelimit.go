package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"flitz/internal/cache"
	"flitz/internal/logger"
)

// RateLimiter counts requests per key in redis over a fixed window, so the
// limit holds across instances.
type RateLimiter struct {
	cache  *cache.RedisCache
	limit  int64
	window time.Duration
}

func NewRateLimiter(c *cache.RedisCache, limit int64, window time.Duration) *RateLimiter {
	return &RateLimiter{cache: c, limit: limit, window: window}
}

func (r *RateLimiter) Allow(c *gin.Context, key string) bool {
	ctx := c.Request.Context()
	redisKey := fmt.Sprintf("ratelimit:%s", key)

	count, err := r.cache.Client.Incr(ctx, redisKey).Result()
	if err != nil {
		// Fail open: a redis hiccup must not take the API down.
		logger.Warn("rate limiter unavailable", "error", err)
		return true
	}
	if count == 1 {
		r.cache.Client.Expire(ctx, redisKey, r.window)
	}
	return count <= r.limit
}

// RateLimit limits by client IP.
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c, c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
