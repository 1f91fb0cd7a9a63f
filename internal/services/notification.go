package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/screwfx/storefront-platform/internal/api/middleware"
	"github.com/screwfx/storefront-platform/internal/errors"
	"github.com/screwfx/storefront-platform/internal/models"
	repository "github.com/screwfx/storefront-platform/internal/repositories"
	"github.com/screwfx/storefront-platform/pkg/sendgrid"
)

type NotificationService interface {
	NotifyOrderStatus(ctx context.Context, order *models.Order)
	ListNotifications(ctx context.Context, page, size int) ([]*models.Notification, error)
}

type notificationService struct {
	repo         repository.NotificationRepository
	emailService sendgrid.EmailService
}

func NewNotificationService(repo repository.NotificationRepository, emailService sendgrid.EmailService) NotificationService {
	return &notificationService{repo: repo, emailService: emailService}
}

// NotifyOrderStatus emails the order's contact address about the status it
// just reached. The status transition is the effect of record: every failure
// here is logged and swallowed, never surfaced to the caller.
func (n *notificationService) NotifyOrderStatus(ctx context.Context, order *models.Order) {

	logger := middleware.LoggerFromContext(ctx).With(
		slog.String("orderNumber", order.OrderNumber),
		slog.String("status", string(order.Status)),
	)

	subject := fmt.Sprintf("Update on your order #%s", order.OrderNumber)
	content := fmt.Sprintf(
		"Hello %s,\n\nYour order #%s has been updated.\n\nCurrent status: %s\nTotal: $%s\n\nThank you for your purchase,\nThe ScrewFX Team\n",
		order.FullName, order.OrderNumber, order.Status.Label(), order.Total.StringFixed(2),
	)

	notification := &models.Notification{
		ID:        uuid.New(),
		Recipient: order.Email,
		Subject:   subject,
		Content:   content,
		Status:    models.NotificationStatusPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := n.repo.CreateNotification(ctx, notification); err != nil {
		logger.Error("Failed to record tracking notification", slog.Any("error", err))
	}

	msg := &models.EmailMessage{
		To:      order.Email,
		Subject: subject,
		Content: content,
	}

	if err := n.emailService.Send(ctx, msg); err != nil {
		logger.Error("Failed to send tracking email", slog.Any("error", err))

		if updateErr := n.repo.UpdateNotificationStatus(ctx, notification.ID, models.NotificationStatusFailed, err.Error()); updateErr != nil {
			logger.Error("Failed to mark notification as failed", slog.Any("error", updateErr))
		}

		return
	}

	if err := n.repo.UpdateNotificationStatus(ctx, notification.ID, models.NotificationStatusSent, ""); err != nil {
		logger.Error("Failed to mark notification as sent", slog.Any("error", err))
	}
}

// ListNotifications implements NotificationService.
func (n *notificationService) ListNotifications(ctx context.Context, page, size int) ([]*models.Notification, error) {

	if page < 1 {
		page = 1
	}

	if size < 1 || size > 50 {
		size = 10
	}

	notifications, err := n.repo.ListNotifications(ctx, page, size)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list notifications").WithError(err)
	}

	return notifications, nil

}
