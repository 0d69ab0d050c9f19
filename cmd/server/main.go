package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	limiterredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/ignatzorin/moderation-backend/internal/config"
	"github.com/ignatzorin/moderation-backend/internal/db"
	"github.com/ignatzorin/moderation-backend/internal/goroutine"
	httpHandlers "github.com/ignatzorin/moderation-backend/internal/http/handlers"
	httpRouter "github.com/ignatzorin/moderation-backend/internal/http/router"
	"github.com/ignatzorin/moderation-backend/internal/logger"
	"github.com/ignatzorin/moderation-backend/internal/mail"
	"github.com/ignatzorin/moderation-backend/internal/repository"
	"github.com/ignatzorin/moderation-backend/internal/service"
	"github.com/ignatzorin/moderation-backend/internal/storage"
	"github.com/ignatzorin/moderation-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера.
	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Rate limit store: Redis в production, in-memory для разработки.
	var redisClient *redis.Client
	var rateLimitStore limiter.Store
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("main: невалидный REDIS_URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()

		rateLimitStore, err = limiterredis.NewStoreWithOptions(redisClient, limiter.StoreOptions{
			Prefix: "moderation-rl",
		})
		if err != nil {
			log.Fatalf("main: не удалось создать rate limit store: %v", err)
		}
	} else {
		rateLimitStore = memory.NewStore()
	}

	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	flags := service.NewFeatureFlags()

	evidenceStorage, err := storage.NewEvidenceStorage(cfg.EvidenceStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	// Email канал: SMTP при заданном хосте, иначе заглушка для разработки.
	var mailer mail.Sender
	if cfg.SMTPHost != "" {
		mailer = mail.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
	} else {
		mailer = mail.NewNoopSender()
	}

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	contentRepo := repository.NewContentRepository(dbConn)
	warningRepo := repository.NewWarningRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)
	logRepo := repository.NewModerationLogRepository(dbConn)
	reportRepo := repository.NewReportRepository(dbConn)

	// Вебсокеты.
	hub := ws.NewHub()
	goroutine.SafeGo(hub.Run)

	// Сервисы.
	notifier := service.NewNotifierService(contentRepo, userRepo, notificationRepo, logRepo, mailer, hub)
	sanctions := service.NewSanctionService(contentRepo, userRepo, warningRepo, notifier)
	dispatcher := service.NewModerationService(contentRepo, sanctions, logRepo)
	reportService := service.NewReportService(reportRepo, dispatcher)
	notificationService := service.NewNotificationService(notificationRepo)
	authService := service.NewAuthService(userRepo, tokenManager)
	automod := service.NewAutomodService(service.DefaultAutomodTerms())

	// HTTP хэндлеры.
	authHandler := httpHandlers.NewAuthHandler(authService)
	moderationHandler := httpHandlers.NewModerationHandler(dispatcher, notifier, logRepo, warningRepo, evidenceStorage, flags)
	reportHandler := httpHandlers.NewReportHandler(reportService, notifier)
	notificationHandler := httpHandlers.NewNotificationHandler(notificationService, notificationRepo)
	automodHandler := httpHandlers.NewAutomodHandler(automod)
	wsHandler := httpHandlers.NewWSHandler(hub, tokenManager)
	healthHandler := httpHandlers.NewHealthHandler(dbConn, redisClient)

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, rateLimitStore, flags, tokenManager,
		authHandler, moderationHandler, reportHandler, notificationHandler,
		automodHandler, wsHandler, healthHandler)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
