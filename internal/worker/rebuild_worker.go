package worker

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/intranet-directory/internal/domain"
	"github.com/spec-kit/intranet-directory/internal/events"
	apperrors "github.com/spec-kit/intranet-directory/pkg/util/errorutil"
)

// Rebuilder recomputes and persists the org chart.
type Rebuilder interface {
	Rebuild(ctx context.Context) (*domain.OrgSnapshot, error)
}

// RebuildWorker rebuilds the org chart in the background after directory
// changes. Requests arriving while one is pending collapse into it.
type RebuildWorker struct {
	rebuilder Rebuilder
	debounce  time.Duration
	logger    *zap.Logger

	pending chan struct{}
	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewRebuildWorker creates a stopped worker.
func NewRebuildWorker(rebuilder Rebuilder, debounce time.Duration, logger *zap.Logger) *RebuildWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RebuildWorker{
		rebuilder: rebuilder,
		debounce:  debounce,
		logger:    logger,
		pending:   make(chan struct{}, 1),
	}
}

// StartRebuildWorker starts a worker and, when autoRebuild is set, subscribes
// it to directory changes.
func StartRebuildWorker(ctx context.Context, rebuilder Rebuilder, dispatcher events.Dispatcher, autoRebuild bool, debounce time.Duration, logger *zap.Logger) *RebuildWorker {
	w := NewRebuildWorker(rebuilder, debounce, logger)
	if autoRebuild && dispatcher != nil {
		w.Subscribe(dispatcher)
	}
	w.Start(ctx)
	return w
}

// Subscribe requests a rebuild on every directory change.
func (w *RebuildWorker) Subscribe(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventDirectoryChanged, func(context.Context, events.Event) error {
		w.Request()
		return nil
	})
}

// Request schedules a rebuild without blocking.
func (w *RebuildWorker) Request() {
	select {
	case w.pending <- struct{}{}:
	default:
	}
}

// Start launches the worker goroutine. Calling Start on a running worker is a no-op.
func (w *RebuildWorker) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.done != nil {
		return
	}
	ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})
	go w.run(ctx, w.done)
}

// Stop cancels the worker and waits for it to exit.
func (w *RebuildWorker) Stop() {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.cancel, w.done = nil, nil
	w.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (w *RebuildWorker) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.pending:
		}

		if w.debounce > 0 {
			timer := time.NewTimer(w.debounce)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
		// Drop a request that arrived during the debounce; this rebuild covers it.
		select {
		case <-w.pending:
		default:
		}

		w.rebuild(ctx)
	}
}

func (w *RebuildWorker) rebuild(ctx context.Context) {
	snap, err := w.rebuilder.Rebuild(ctx)
	if err == nil {
		w.logger.Debug("background org rebuild finished", zap.Int("employees", snap.TotalEmployees))
		return
	}
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) && domainErr.HTTPStatus == http.StatusPreconditionFailed {
		w.logger.Info("background org rebuild skipped", zap.String("reason", domainErr.Message))
		return
	}
	w.logger.Error("background org rebuild failed", zap.Error(err))
}
