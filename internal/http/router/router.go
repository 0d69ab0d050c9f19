package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ulule/limiter/v3"

	"github.com/ignatzorin/moderation-backend/internal/config"
	"github.com/ignatzorin/moderation-backend/internal/http/handlers"
	"github.com/ignatzorin/moderation-backend/internal/http/middleware"
	"github.com/ignatzorin/moderation-backend/internal/service"
)

// SetupRouter собирает все маршруты сервиса. Очередь модерации проходит
// фиксированную цепочку проверок: rate limit, валидация тела,
// авторизация (на admin-маршрутах), кеширующие заголовки. Первый
// сработавший отказ отвечает сразу, до хэндлера запрос не доходит.
func SetupRouter(
	cfg *config.Config,
	rateLimitStore limiter.Store,
	flags *service.FeatureFlags,
	tokenManager *service.TokenManager,
	authHandler *handlers.AuthHandler,
	moderationHandler *handlers.ModerationHandler,
	reportHandler *handlers.ReportHandler,
	notificationHandler *handlers.NotificationHandler,
	automodHandler *handlers.AutomodHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(rateLimitStore, "auth", 5, cfg.RateLimitPeriod))
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/logout", authHandler.Logout)
	}

	api.GET("/ws", wsHandler.Handle)

	// Уведомления текущего пользователя.
	notifications := api.Group("/notifications")
	notifications.Use(middleware.AuthMiddleware(tokenManager))
	{
		notifications.GET("", notificationHandler.List)
		notifications.GET("/unread", notificationHandler.CountUnread)
		notifications.POST("/:id/read", middleware.UUIDValidator("id"), notificationHandler.MarkAsRead)
		notifications.POST("/read-all", notificationHandler.MarkAllAsRead)
		notifications.GET("/preferences", notificationHandler.GetPreferences)
		notifications.PUT("/preferences", notificationHandler.UpdatePreferences)
	}

	// Пользовательская сторона очереди модерации: подача жалоб.
	// Порядок цепочки фиксирован: rate limit, валидация тела, авторизация.
	moderation := api.Group("/moderation")
	moderation.Use(middleware.RateLimitMiddleware(rateLimitStore, "moderation", cfg.ModerationRateLimit, cfg.RateLimitPeriod))
	moderation.Use(middleware.BodyValidation(middleware.MaxGeneralBodyBytes))
	moderation.Use(middleware.AuthMiddleware(tokenManager))
	{
		moderation.POST("/reports", reportHandler.CreateReport)
		moderation.GET("/reports", reportHandler.ListMyReports)
	}

	// Админская сторона: выполнение действий, журнал, предупреждения.
	admin := api.Group("/admin/moderation")
	admin.Use(middleware.RateLimitMiddleware(rateLimitStore, "admin-moderation", cfg.ModerationRateLimit, cfg.RateLimitPeriod))
	admin.Use(middleware.BodyValidation(middleware.MaxGeneralBodyBytes))
	admin.Use(middleware.AuthMiddleware(tokenManager))
	admin.Use(middleware.RequireModerator())
	admin.Use(middleware.CacheControl(flags, middleware.CacheShortTerm))
	{
		admin.POST("/actions", moderationHandler.PerformAction)
		admin.POST("/actions/batch", moderationHandler.PerformBatch)

		admin.GET("/content/:type/:id", middleware.UUIDValidator("id"), moderationHandler.GetContent)
		admin.GET("/log", moderationHandler.ListLog)

		admin.GET("/reports", reportHandler.ListPending)
		admin.GET("/reports/:id", middleware.UUIDValidator("id"), reportHandler.GetReport)
		admin.POST("/reports/:id/resolve", middleware.UUIDValidator("id"), reportHandler.ResolveReport)

		admin.GET("/users/:id/warnings", middleware.UUIDValidator("id"), moderationHandler.ListUserWarnings)
		admin.GET("/warnings/:id/evidence", middleware.UUIDValidator("id"), moderationHandler.ListEvidence)

		// Аналитика кешируется дольше остальных админских ответов.
		admin.GET("/analytics", middleware.CacheControl(flags, middleware.CacheMediumTerm), moderationHandler.Analytics)
	}

	// Загрузка доказательств идёт multipart-ом: единственный маршрут,
	// где gate допускает не-JSON тело. Неймспейс лимитера общий с
	// остальными админскими маршрутами, окно считается вместе.
	uploads := api.Group("/admin/moderation")
	uploads.Use(middleware.RateLimitMiddleware(rateLimitStore, "admin-moderation", cfg.ModerationRateLimit, cfg.RateLimitPeriod))
	uploads.Use(middleware.BodyValidation(middleware.MaxGeneralBodyBytes, "multipart/form-data"))
	uploads.Use(middleware.AuthMiddleware(tokenManager))
	uploads.Use(middleware.RequireModerator())
	{
		uploads.POST("/warnings/:id/evidence", middleware.UUIDValidator("id"), moderationHandler.UploadEvidence)
	}

	// AI-маршруты модерации: жёстче лимит запросов и меньше потолок тела.
	ai := api.Group("/admin/moderation/ai")
	ai.Use(middleware.RateLimitMiddleware(rateLimitStore, "ai-moderation", cfg.AIModerationLimit, cfg.RateLimitPeriod))
	ai.Use(middleware.BodyValidation(middleware.MaxAIBodyBytes))
	ai.Use(middleware.AuthMiddleware(tokenManager))
	ai.Use(middleware.RequireModerator())
	{
		ai.POST("/analyze", automodHandler.Analyze)
	}

	return r
}
