package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/flowgen/internal/ai"
	httptransport "github.com/spec-kit/flowgen/internal/api/http"
	"github.com/spec-kit/flowgen/internal/api/http/handlers"
	"github.com/spec-kit/flowgen/internal/auth"
	"github.com/spec-kit/flowgen/internal/config"
	"github.com/spec-kit/flowgen/internal/events"
	"github.com/spec-kit/flowgen/internal/guardrail"
	"github.com/spec-kit/flowgen/internal/observability"
	"github.com/spec-kit/flowgen/internal/persistence"
	"github.com/spec-kit/flowgen/internal/ratelimit"
	"github.com/spec-kit/flowgen/internal/repository"
	"github.com/spec-kit/flowgen/internal/service"
	"github.com/spec-kit/flowgen/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
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
	ticketRepo := repository.NewTicketRepository(pool)
	logRepo := repository.NewTicketLogRepository(pool)

	geminiClient, err := ai.NewGeminiClient(cfg.Gemini)
	if err != nil {
		logger.Fatal("failed to init gemini client", zap.Error(err))
	}
	resultCache := ai.NewResultCache(redis.Client, cfg.Redis.CacheTTL(), logger)
	classifier := ai.NewClassifier(geminiClient, resultCache, cfg.Gemini, logger)

	limiter := ratelimit.NewFixedWindowLimiter(cfg.RateLimit.MaxRequestsPerWindow, cfg.RateLimit.Window())
	guardrails := guardrail.NewEngine()
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	intakeService := service.NewIntakeService(service.IntakeDependencies{
		TicketRepo: ticketRepo,
		LogRepo:    logRepo,
		Limiter:    limiter,
		Classifier: classifier,
		Guardrails: guardrails,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})

	authService := service.NewAuthService(cfg.Auth)
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager())

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService, logger)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env == "production",
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Tickets:        handlers.NewTicketsHandler(intakeService),
		Admin:          handlers.NewAdminHandler(authService),
		Metrics:        handlers.NewMetricsHandler(metrics),
		AuthMiddleware: authMiddleware,
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
