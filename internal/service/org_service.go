package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/spec-kit/intranet-directory/internal/domain"
	"github.com/spec-kit/intranet-directory/internal/events"
	"github.com/spec-kit/intranet-directory/internal/observability"
	"github.com/spec-kit/intranet-directory/internal/orgchart"
	"github.com/spec-kit/intranet-directory/internal/repository"
	apperrors "github.com/spec-kit/intranet-directory/pkg/util/errorutil"
)

// OrgService builds, persists and serves the org chart.
type OrgService struct {
	employees  repository.EmployeeRepository
	snapshots  repository.OrgSnapshotRepository
	cache      repository.OrgSnapshotCache
	builder    *orgchart.Builder
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger

	rebuilds singleflight.Group
}

// OrgDependencies encapsulates collaborators required for org chart management.
type OrgDependencies struct {
	EmployeeRepo repository.EmployeeRepository
	SnapshotRepo repository.OrgSnapshotRepository
	Cache        repository.OrgSnapshotCache
	Builder      *orgchart.Builder
	Dispatcher   events.Dispatcher
	Metrics      *observability.Metrics
	Logger       *zap.Logger
}

// NewOrgService constructs the service.
func NewOrgService(deps OrgDependencies) *OrgService {
	builder := deps.Builder
	if builder == nil {
		builder = orgchart.NewBuilder(nil)
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrgService{
		employees:  deps.EmployeeRepo,
		snapshots:  deps.SnapshotRepo,
		cache:      deps.Cache,
		builder:    builder,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
	}
}

// Rebuild recomputes the org chart from the directory and persists it as the
// current snapshot. Concurrent callers share one rebuild.
func (s *OrgService) Rebuild(ctx context.Context) (*domain.OrgSnapshot, error) {
	v, err, shared := s.rebuilds.Do(domain.CurrentSnapshotKey, func() (any, error) {
		return s.rebuild(context.WithoutCancel(ctx))
	})
	if shared {
		s.logger.Debug("org rebuild shared with concurrent caller")
	}
	if err != nil {
		return nil, err
	}
	return v.(*domain.OrgSnapshot), nil
}

func (s *OrgService) rebuild(ctx context.Context) (*domain.OrgSnapshot, error) {
	start := time.Now()
	tree, err := s.build(ctx)
	if err != nil {
		s.metrics.RecordRebuild(0, time.Since(start), err)
		return nil, err
	}

	data, err := json.Marshal(tree)
	if err != nil {
		s.metrics.RecordRebuild(0, time.Since(start), err)
		return nil, apperrors.NewInternalError(err)
	}
	snap := &domain.OrgSnapshot{
		Key:            domain.CurrentSnapshotKey,
		Data:           data,
		TotalEmployees: tree.TotalEmployees,
	}
	if err := s.snapshots.Upsert(ctx, snap); err != nil {
		s.metrics.RecordRebuild(0, time.Since(start), err)
		return nil, apperrors.MapError(err)
	}
	s.writeCache(ctx, snap)

	elapsed := time.Since(start)
	s.metrics.RecordRebuild(tree.TotalEmployees, elapsed, nil)
	s.logger.Info("org chart rebuilt",
		zap.Int("employees", tree.TotalEmployees),
		zap.Int("branches", len(tree.Branches)),
		zap.Duration("duration", elapsed))

	publish(ctx, s.dispatcher, events.EventOrgRebuilt, events.OrgRebuiltPayload{
		TotalEmployees: tree.TotalEmployees,
		Branches:       len(tree.Branches),
		DurationMs:     elapsed.Milliseconds(),
	})
	return snap, nil
}

// Current returns the last persisted snapshot.
func (s *OrgService) Current(ctx context.Context) (*domain.OrgSnapshot, error) {
	if s.cache != nil {
		snap, ok, err := s.cache.Get(ctx, domain.CurrentSnapshotKey)
		if err != nil {
			s.logger.Warn("org snapshot cache read failed", zap.Error(err))
		} else if ok {
			return snap, nil
		}
	}

	snap, err := s.snapshots.Get(ctx, domain.CurrentSnapshotKey)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewDomainError("NOT_FOUND",
			"No organization data found; rebuild from the employee directory first",
			http.StatusNotFound, map[string]any{})
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	s.writeCache(ctx, snap)
	return snap, nil
}

// Preview builds the org chart from the directory without persisting it.
func (s *OrgService) Preview(ctx context.Context) (*orgchart.Tree, error) {
	return s.build(ctx)
}

func (s *OrgService) build(ctx context.Context) (*orgchart.Tree, error) {
	employees, err := s.employees.ListAll(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	tree, err := s.builder.Build(employees)
	switch {
	case errors.Is(err, orgchart.ErrNoEmployees):
		return nil, apperrors.NewPreconditionFailed("NO_EMPLOYEES",
			"No employees found; import the employee directory first", err)
	case err != nil:
		return nil, apperrors.NewInternalError(err)
	}
	return tree, nil
}

func (s *OrgService) writeCache(ctx context.Context, snap *domain.OrgSnapshot) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, snap); err != nil {
		s.logger.Warn("org snapshot cache write failed", zap.Error(err))
	}
}

func publish(ctx context.Context, dispatcher events.Dispatcher, eventType events.EventType, payload any) {
	if dispatcher == nil {
		return
	}
	_ = dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	})
}
