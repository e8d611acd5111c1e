package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/checkin-service/internal/api/http"
	"github.com/spec-kit/checkin-service/internal/api/http/handlers"
	"github.com/spec-kit/checkin-service/internal/config"
	"github.com/spec-kit/checkin-service/internal/events"
	"github.com/spec-kit/checkin-service/internal/observability"
	"github.com/spec-kit/checkin-service/internal/persistence"
	"github.com/spec-kit/checkin-service/internal/psa"
	"github.com/spec-kit/checkin-service/internal/repository"
	"github.com/spec-kit/checkin-service/internal/service"
	"github.com/spec-kit/checkin-service/internal/session"
	"github.com/spec-kit/checkin-service/internal/validation"
	"github.com/spec-kit/checkin-service/internal/worker"
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
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	var redis *persistence.Redis
	var sessions session.Store
	switch cfg.Session.Backend {
	case config.SessionBackendMemory:
		logger.Warn("using in-memory session store; sessions are lost on restart")
		sessions = session.NewMemoryStore()
	default:
		redis = persistence.NewRedis(cfg.Redis, logger)
		defer redis.Close()
		sessions = session.NewRedisStore(redis.Client, cfg.Session.TTL(), logger)
	}

	var checkins repository.CheckinRepository
	if pg.Enabled() {
		checkins = repository.NewCheckinRepository(pg.PoolHandle())
	}

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, checkins, logger))

	psaClient := psa.NewClient(cfg.PSA, logger)
	llm, err := service.NewOpenAIModel(cfg.TextGen)
	if err != nil {
		logger.Fatal("failed to init text generation client", zap.Error(err))
	}

	intakeService := service.NewIntakeService(service.IntakeDependencies{
		Sessions:   sessions,
		Gateway:    psaClient,
		Resolver:   service.NewContactResolver(psaClient, logger),
		Generator:  service.NewFollowupGenerator(llm, cfg.TextGen, logger),
		Dispatcher: dispatcher,
		Payment:    cfg.Payment,
		Logger:     logger,
	})

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	tokens := session.NewTokenManager(cfg.Session.Secret, cfg.Session.TTL())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Intake:  handlers.NewIntakeHandler(intakeService, validation.New()),
		Session: session.NewCookieMiddleware(tokens, cfg.Session.CookieName, cfg.Session.TTL(), cfg.App.Env == "production", logger),
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
