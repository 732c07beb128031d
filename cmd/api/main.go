package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/intranet-directory/internal/api/http"
	"github.com/spec-kit/intranet-directory/internal/api/http/handlers"
	"github.com/spec-kit/intranet-directory/internal/config"
	"github.com/spec-kit/intranet-directory/internal/events"
	"github.com/spec-kit/intranet-directory/internal/observability"
	"github.com/spec-kit/intranet-directory/internal/orgchart"
	"github.com/spec-kit/intranet-directory/internal/persistence"
	"github.com/spec-kit/intranet-directory/internal/repository"
	"github.com/spec-kit/intranet-directory/internal/service"
	"github.com/spec-kit/intranet-directory/internal/worker"
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

	rules, err := orgchart.LoadRules(cfg.Org.RulesFile)
	if err != nil {
		logger.Fatal("failed to load org rules", zap.String("path", cfg.Org.RulesFile), zap.Error(err))
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()
	pool := pg.PoolHandle()
	if pool == nil {
		logger.Fatal("POSTGRES_DSN is required to serve the directory")
	}

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pool, cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)

	employeeRepo := repository.NewEmployeeRepository(pool)
	orgService := service.NewOrgService(service.OrgDependencies{
		EmployeeRepo: employeeRepo,
		SnapshotRepo: repository.NewOrgSnapshotRepository(pool),
		Cache:        repository.NewOrgSnapshotCache(redis.ClientHandle(), cfg.Org.CacheTTL()),
		Builder:      orgchart.NewBuilder(rules),
		Dispatcher:   dispatcher,
		Metrics:      metrics,
		Logger:       logger,
	})
	directoryService := service.NewDirectoryService(employeeRepo, dispatcher, logger)
	service.NewNotificationService(dispatcher, logger).RegisterHandlers()

	rebuildWorker := worker.StartRebuildWorker(ctx, orgService, dispatcher,
		cfg.Org.AutoRebuild, cfg.Org.RebuildDebounce(), logger)
	defer rebuildWorker.Stop()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, httptransport.MiddlewareConfig{
		Logger:         logger,
		Metrics:        metrics,
		Timeout:        cfg.App.RequestTimeout(),
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:    handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Org:       handlers.NewOrgHandler(orgService),
		Directory: handlers.NewDirectoryHandler(directoryService),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Warn("fiber shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
