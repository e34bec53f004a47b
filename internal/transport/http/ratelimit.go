package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RateLimiter is a fixed-window request limiter backed by Redis, keyed
// by client IP. Counters expire with the window, so Redis does the
// cleanup.
type RateLimiter struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
	log    *zerolog.Logger
}

// NewRateLimiter builds a limiter allowing limit requests per window.
func NewRateLimiter(client *redis.Client, prefix string, limit int, window time.Duration, logger *zerolog.Logger) *RateLimiter {
	return &RateLimiter{
		client: client,
		prefix: prefix,
		limit:  limit,
		window: window,
		log:    logger,
	}
}

// Middleware returns the gin handler enforcing the limit. A nil limiter
// yields a pass-through handler, so routes need no feature checks.
func (r *RateLimiter) Middleware() gin.HandlerFunc {
	if r == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := fmt.Sprintf("%s:%s", r.prefix, c.ClientIP())

		count, err := r.client.Incr(ctx, key).Result()
		if err != nil {
			// Fail open: a broken limiter must not take auth down.
			r.log.Warn().Err(err).Msg("rate limiter unavailable")
			c.Next()
			return
		}
		if count == 1 {
			r.client.Expire(ctx, key, r.window)
		}
		if count > int64(r.limit) {
			c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "rate limit exceeded"})
			c.Abort()
			return
		}
		c.Next()
	}
}
