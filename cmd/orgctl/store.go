package main

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/intranet-directory/internal/config"
	"github.com/spec-kit/intranet-directory/internal/events"
	"github.com/spec-kit/intranet-directory/internal/observability"
	"github.com/spec-kit/intranet-directory/internal/orgchart"
	"github.com/spec-kit/intranet-directory/internal/persistence"
	"github.com/spec-kit/intranet-directory/internal/repository"
	"github.com/spec-kit/intranet-directory/internal/service"
)

// store holds the services the database-backed commands use.
type store struct {
	logger    *zap.Logger
	pg        *persistence.Postgres
	redis     *persistence.Redis
	org       *service.OrgService
	directory *service.DirectoryService
}

func openStore(ctx context.Context) (*store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, err
	}
	rules, err := orgchart.LoadRules(cfg.Org.RulesFile)
	if err != nil {
		return nil, err
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, err
	}
	pool := pg.PoolHandle()
	if pool == nil {
		pg.Close()
		_ = logger.Sync()
		return nil, errors.New("POSTGRES_DSN is required")
	}
	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pool, cfg.Postgres.MigrationsDir, logger); err != nil {
			pg.Close()
			_ = logger.Sync()
			return nil, err
		}
	}
	redis := persistence.NewRedis(cfg.Redis, logger)

	dispatcher := events.NewInMemoryDispatcher(logger)
	service.NewNotificationService(dispatcher, logger).RegisterHandlers()

	employees := repository.NewEmployeeRepository(pool)
	return &store{
		logger: logger,
		pg:     pg,
		redis:  redis,
		org: service.NewOrgService(service.OrgDependencies{
			EmployeeRepo: employees,
			SnapshotRepo: repository.NewOrgSnapshotRepository(pool),
			Cache:        repository.NewOrgSnapshotCache(redis.ClientHandle(), cfg.Org.CacheTTL()),
			Builder:      orgchart.NewBuilder(rules),
			Dispatcher:   dispatcher,
			Logger:       logger,
		}),
		directory: service.NewDirectoryService(employees, dispatcher, logger),
	}, nil
}

func (s *store) Close() {
	s.redis.Close()
	s.pg.Close()
	_ = s.logger.Sync()
}
