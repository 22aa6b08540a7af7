package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/arclyte/accounts/internal/constants"
	"github.com/arclyte/accounts/pkg/logger"
	"github.com/arclyte/accounts/pkg/redis"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimit throttles requests per client IP using a Redis counter
// with a fixed window. When Redis is disabled or unreachable the
// limiter fails open: availability over strictness.
func RateLimit(client *redis.Client, keyPrefix string, maxRequest int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil || !client.IsEnabled() {
			c.Next()
			return
		}

		key := keyPrefix + c.ClientIP()
		count, err := client.Hit(c.Request.Context(), key, window)
		if err != nil {
			logger.GetLogger().Warn("Rate limiter unavailable, allowing request",
				zap.String("key", key),
				zap.Error(err))
			c.Next()
			return
		}

		if count > int64(maxRequest) {
			logger.GetLogger().Warn("Rate limit exceeded",
				zap.String("client_ip", c.ClientIP()),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Int64("current_requests", count),
				zap.Int("max_requests", maxRequest),
			)
			c.JSON(http.StatusTooManyRequests, constants.BuildErrorResponse("Too many requests", gin.H{
				"retry_after": window.Seconds(),
			}))
			c.Abort()
			return
		}

		remaining := int64(maxRequest) - count
		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", maxRequest))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))

		c.Next()
	}
}
