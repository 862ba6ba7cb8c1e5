package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sparkbytes/server/internal/model"
	"github.com/sparkbytes/server/internal/repository"
)

// NotificationService exposes the announcement feed. Entries are written by
// EventService as a side effect of event creation; this service only reads.
type NotificationService struct {
	notifications repository.NotificationRepository
	logger        *slog.Logger
}

// NewNotificationService creates a NotificationService.
func NewNotificationService(notifications repository.NotificationRepository, logger *slog.Logger) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		logger:        logger,
	}
}

// List returns all notifications, newest first.
func (s *NotificationService) List(ctx context.Context) ([]model.Notification, error) {
	notifications, err := s.notifications.ListNotifications(ctx)
	if err != nil {
		s.logger.Error("failed to list notifications", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	return notifications, nil
}
