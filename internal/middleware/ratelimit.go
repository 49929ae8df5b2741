package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RateLimit allows limit requests per client IP per fixed window, counted in
// Redis. When Redis is unavailable requests are let through.
func RateLimit(client *redis.Client, scope string, limit int, window time.Duration, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil || limit <= 0 || window <= 0 {
			c.Next()
			return
		}

		bucket := time.Now().UnixNano() / int64(window)
		key := fmt.Sprintf("rl:%s:%s:%d", scope, c.ClientIP(), bucket)

		pipe := client.TxPipeline()
		incr := pipe.Incr(c, key)
		pipe.Expire(c, key, window)
		if _, err := pipe.Exec(c); err != nil {
			log.Warn().Err(err).Str("scope", scope).Msg("rate limit check failed")
			c.Next()
			return
		}

		count := incr.Val()
		remaining := int64(limit) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(limit) {
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Try again later."})
			return
		}

		c.Next()
	}
}
