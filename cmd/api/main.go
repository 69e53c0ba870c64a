package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/ghost-league/internal/api/http"
	"github.com/spec-kit/ghost-league/internal/api/http/handlers"
	"github.com/spec-kit/ghost-league/internal/auth"
	"github.com/spec-kit/ghost-league/internal/config"
	"github.com/spec-kit/ghost-league/internal/events"
	"github.com/spec-kit/ghost-league/internal/mail"
	"github.com/spec-kit/ghost-league/internal/observability"
	"github.com/spec-kit/ghost-league/internal/persistence"
	"github.com/spec-kit/ghost-league/internal/ratelimit"
	"github.com/spec-kit/ghost-league/internal/repository"
	"github.com/spec-kit/ghost-league/internal/service"
	"github.com/spec-kit/ghost-league/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App.Env)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	accountRepo := repository.NewAccountRepository(pool)
	appealRepo := repository.NewAppealRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)

	var verificationRepo repository.VerificationRepository
	var resendLimiter, authLimiter ratelimit.Limiter
	if redis.Available() {
		verificationRepo = repository.NewRedisVerificationRepository(redis.Client)
		resendLimiter = ratelimit.NewLimiter(redis.Client, "resend", cfg.RateLimit.ResendPerHour, time.Hour)
		authLimiter = ratelimit.NewLimiter(redis.Client, "auth", cfg.RateLimit.AuthPerMinute, time.Minute)
	} else {
		verificationRepo = repository.NewMemoryVerificationRepository()
		resendLimiter = ratelimit.NewLimiter(nil, "resend", cfg.RateLimit.ResendPerHour, time.Hour)
		authLimiter = ratelimit.NewLimiter(nil, "auth", cfg.RateLimit.AuthPerMinute, time.Minute)
	}

	dispatcher := events.NewInMemoryDispatcher()
	mailer := mail.NewMailer(cfg.Mail, logger)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		AccountRepo:      accountRepo,
		VerificationRepo: verificationRepo,
		Mailer:           mailer,
		Dispatcher:       dispatcher,
		ResendLimiter:    resendLimiter,
	})
	accountService := service.NewAccountService(accountRepo, dispatcher)
	appealService := service.NewAppealService(cfg.Moderation, appealRepo, dispatcher)
	notificationService := service.NewNotificationService(notificationRepo, dispatcher, logger)

	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), accountRepo)

	metrics := observability.NewMetrics()
	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:          handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Auth:            handlers.NewAuthHandler(authService),
		Verification:    handlers.NewVerificationHandler(authService),
		Users:           handlers.NewUsersHandler(accountService, appealService, notificationService),
		Admin:           handlers.NewAdminHandler(accountService, appealService),
		AuthMiddleware:  authMiddleware,
		AuthRateLimiter: authLimiter,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
