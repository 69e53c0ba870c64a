package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/ghost-league/internal/domain"
	"github.com/spec-kit/ghost-league/internal/events"
	"github.com/spec-kit/ghost-league/internal/repository"
	apperrors "github.com/spec-kit/ghost-league/pkg/util"
)

// NotificationService materializes in-app notifications from domain events
// and serves the member-facing notification endpoints.
type NotificationService struct {
	notifications repository.NotificationRepository
	dispatcher    events.Dispatcher
	logger        *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(notifications repository.NotificationRepository, dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		dispatcher:    dispatcher,
		logger:        logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventEmailVerified, n.handleEmailVerified)
	n.dispatcher.Subscribe(events.EventAccountStatusChanged, n.handleStatusChanged)
	n.dispatcher.Subscribe(events.EventAppealReplied, n.handleAppealReplied)
}

// List returns the account's notifications, newest first.
func (n *NotificationService) List(ctx context.Context, accountID string, limit, offset int) ([]domain.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return n.notifications.ListByAccount(ctx, accountID, limit, offset)
}

// MarkRead marks one of the account's notifications as read.
func (n *NotificationService) MarkRead(ctx context.Context, accountID, id string) error {
	if err := n.notifications.MarkRead(ctx, accountID, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("notification", map[string]any{"id": id})
		}
		return err
	}
	return nil
}

// MarkAllRead marks every unread notification for the account as read.
func (n *NotificationService) MarkAllRead(ctx context.Context, accountID string) error {
	return n.notifications.MarkAllRead(ctx, accountID)
}

func (n *NotificationService) handleEmailVerified(ctx context.Context, event events.Event) error {
	return n.create(ctx, &domain.Notification{
		AccountID: event.AccountID,
		Kind:      domain.NotificationAccountVerified,
		Title:     "Welcome to Ghost League",
		Body:      "Your email is verified and your account is ready to compete.",
	})
}

func (n *NotificationService) handleStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.AccountStatusChangedPayload)
	if !ok {
		return nil
	}

	var body string
	switch payload.NewStatus {
	case domain.AccountStatusActive:
		body = "Your account is active again."
	case domain.AccountStatusSuspended:
		body = "Your account has been suspended."
		if payload.Reason != "" {
			body = fmt.Sprintf("Your account has been suspended: %s", payload.Reason)
		}
	case domain.AccountStatusBanned:
		body = "Your account has been banned."
	}

	return n.create(ctx, &domain.Notification{
		AccountID: event.AccountID,
		Kind:      domain.NotificationStatusChanged,
		Title:     "Account status updated",
		Body:      body,
	})
}

func (n *NotificationService) handleAppealReplied(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.AppealRepliedPayload)
	if !ok || payload.AuthorType != domain.AppealAuthorModerator {
		// Members do not need a notification for their own replies.
		return nil
	}
	return n.create(ctx, &domain.Notification{
		AccountID: event.AccountID,
		Kind:      domain.NotificationAppealReply,
		Title:     "A moderator replied to your appeal",
		Body:      "Open your appeal to read the response.",
	})
}

func (n *NotificationService) create(ctx context.Context, notification *domain.Notification) error {
	if err := n.notifications.Create(ctx, notification); err != nil {
		n.logger.Error("create notification",
			zap.String("account_id", notification.AccountID),
			zap.String("kind", string(notification.Kind)),
			zap.Error(err))
		return err
	}
	return nil
}
