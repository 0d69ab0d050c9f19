package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/moderation-backend/internal/service"
)

// Категории кеширования для read-only маршрутов модерации.
const (
	CacheShortTerm  = "public, max-age=30, stale-while-revalidate=60"
	CacheMediumTerm = "public, max-age=300, stale-while-revalidate=600"
)

// CacheControl выставляет кеширующие заголовки на GET/HEAD ответы.
// Поведение включается фичефлагом, чтобы отключать кеширование без деплоя.
func CacheControl(flags *service.FeatureFlags, directive string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.Next()
			return
		}

		if !flags.Enabled(service.FlagCacheHeaders, false) {
			c.Next()
			return
		}

		c.Header("Cache-Control", directive)
		c.Next()
	}
}
