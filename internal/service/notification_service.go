package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/intranet-directory/internal/events"
)

// NotificationService reports directory and org chart activity to the log.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventDirectoryChanged, n.handleDirectoryChanged)
	n.dispatcher.Subscribe(events.EventOrgRebuilt, n.handleOrgRebuilt)
}

func (n *NotificationService) handleDirectoryChanged(_ context.Context, event events.Event) error {
	fields := []zap.Field{zap.String("event_id", event.ID)}
	if p, ok := event.Payload.(events.DirectoryChangedPayload); ok {
		fields = append(fields,
			zap.String("action", string(p.Action)),
			zap.String("employee_id", p.EmployeeID),
			zap.Int("count", p.Count))
	}
	n.logger.Info("DirectoryChanged", fields...)
	return nil
}

func (n *NotificationService) handleOrgRebuilt(_ context.Context, event events.Event) error {
	n.logger.Info("OrgRebuilt", zap.String("event_id", event.ID), zap.Any("payload", event.Payload))
	return nil
}
