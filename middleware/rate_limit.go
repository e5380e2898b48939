package middleware

import (
	"fmt"
	"strconv"
	"time"

	apperrors "github.com/NomadCrew/feedback-tracker-backend/errors"
	"github.com/NomadCrew/feedback-tracker-backend/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const submissionKeyPrefix = "ratelimit:feedback:"

// SubmissionRateLimiter limits how many requests one client IP may make per
// window. Counters live in Redis as a fixed window: the first hit sets the
// expiry. When Redis is unreachable the request is let through.
func SubmissionRateLimiter(redisClient redis.UniversalClient, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := submissionKeyPrefix + getClientIP(c)

		count, err := redisClient.Incr(ctx, key).Result()
		if err != nil {
			logger.GetLogger().Warnw("Rate limit check failed, allowing request", "key", key, "error", err)
			c.Next()
			return
		}
		if count == 1 {
			if err := redisClient.Expire(ctx, key, window).Err(); err != nil {
				logger.GetLogger().Warnw("Failed to set rate limit window", "key", key, "error", err)
			}
		}

		if count > int64(limit) {
			ttl, err := redisClient.TTL(ctx, key).Result()
			if err != nil || ttl <= 0 {
				ttl = window
			}
			retryAfter := int(ttl.Seconds())

			c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", time.Now().Add(ttl).Unix()))
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			_ = c.Error(apperrors.RateLimitExceeded("Too many submissions. Please try again later.", retryAfter))
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(int64(limit)-count, 10))

		c.Next()
	}
}

// getClientIP returns the client IP as gin resolves it. Forwarding headers
// only count when the engine trusts the peer that sent them.
func getClientIP(c *gin.Context) string {
	return c.ClientIP()
}
