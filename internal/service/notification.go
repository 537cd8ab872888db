package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/taskhive/taskhive-api/internal"
)

//NotificationRepository defines the datasource handling reading
//due-soon alerts, alerts themselves are written by the Task
//repository as a creation side effect.
type NotificationRepository interface {
	List(ctx context.Context, userID uuid.UUID) ([]internal.Notification, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
}

//Notification defines the application service in charge of
//interacting with Notifications.
type Notification struct {
	logger *zap.Logger
	repo   NotificationRepository
}

//NewNotification instantiates the Notification service
func NewNotification(logger *zap.Logger, repo NotificationRepository) *Notification {
	return &Notification{
		logger: logger,
		repo:   repo,
	}
}

//List returns the requester's notifications, unread first
func (n *Notification) List(ctx context.Context, userID uuid.UUID) ([]internal.Notification, error) {
	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer(otelName).Start(ctx, "Notification.List")
	defer span.End()

	res, err := n.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("repo list: %w", err)
	}

	return res, nil
}

//MarkRead flips one of the requester's notifications to read
func (n *Notification) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer(otelName).Start(ctx, "Notification.MarkRead")
	defer span.End()

	if err := n.repo.MarkRead(ctx, userID, id); err != nil {
		return fmt.Errorf("repo mark read: %w", err)
	}

	return nil
}
