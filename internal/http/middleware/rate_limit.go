package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"

	"github.com/ignatzorin/moderation-backend/internal/metrics"
)

// RateLimitMiddleware ограничивает частоту запросов по IP внутри неймспейса.
// Неймспейс входит в ключ, поэтому общие и AI-маршруты считаются раздельно.
// Store передаётся снаружи: in-memory для разработки, Redis в production.
func RateLimitMiddleware(store limiter.Store, namespace string, limit int64, period time.Duration) gin.HandlerFunc {
	if limit <= 0 {
		limit = 20
	}
	if period <= 0 {
		period = 10 * time.Second
	}

	instance := limiter.New(store, limiter.Rate{
		Period: period,
		Limit:  limit,
	})

	return func(c *gin.Context) {
		key := fmt.Sprintf("%s-%s", namespace, c.ClientIP())
		context, err := instance.Get(c, key)
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", context.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", context.Remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", context.Reset))

		if context.Reached {
			metrics.RateLimited.WithLabelValues(namespace).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "слишком много запросов, попробуйте позже",
			})
			return
		}

		c.Next()
	}
}
