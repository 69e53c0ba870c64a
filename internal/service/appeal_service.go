package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ghost-league/internal/config"
	"github.com/spec-kit/ghost-league/internal/domain"
	"github.com/spec-kit/ghost-league/internal/events"
	"github.com/spec-kit/ghost-league/internal/repository"
	apperrors "github.com/spec-kit/ghost-league/pkg/util"
)

// AppealService manages suspension appeal threads. Suspended members may
// open one appeal and add to its conversation, throttled by a resubmission
// cooldown; banned members have no appeal path at all.
type AppealService struct {
	appeals    repository.AppealRepository
	dispatcher events.Dispatcher
	cooldown   time.Duration
}

// NewAppealService builds the service.
func NewAppealService(cfg config.ModerationConfig, appeals repository.AppealRepository, dispatcher events.Dispatcher) *AppealService {
	return &AppealService{
		appeals:    appeals,
		dispatcher: dispatcher,
		cooldown:   cfg.AppealCooldown(),
	}
}

// GetForAccount returns the account's open appeal with its conversation.
func (s *AppealService) GetForAccount(ctx context.Context, accountID string) (*domain.Appeal, error) {
	appeal, err := s.appeals.GetOpenByAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("appeal", nil)
		}
		return nil, err
	}
	return appeal, nil
}

// Submit opens an appeal for a suspended member, or appends to the existing
// open one. User submissions inside the cooldown window are rejected with a
// wait hint.
func (s *AppealService) Submit(ctx context.Context, account *domain.Account, body string) (*domain.Appeal, error) {
	if err := s.checkEligibility(account); err != nil {
		return nil, err
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewValidationError("appeal message is required", map[string]any{"message": "required"})
	}

	appeal, err := s.appeals.GetOpenByAccount(ctx, account.ID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		appeal = &domain.Appeal{AccountID: account.ID, Status: domain.AppealStatusOpen}
		if err := s.appeals.Create(ctx, appeal); err != nil {
			return nil, err
		}
	} else if err := s.checkCooldown(appeal); err != nil {
		return nil, err
	}

	msg, err := s.addMessage(ctx, appeal, domain.AppealAuthorUser, &account.ID, body)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventAppealSubmitted, account.ID, events.AppealSubmittedPayload{
		AppealID:    appeal.ID,
		BodyPreview: preview(msg.Body),
	})
	return appeal, nil
}

// Reply appends a user message to the member's own open appeal.
func (s *AppealService) Reply(ctx context.Context, account *domain.Account, appealID, body string) (*domain.Appeal, error) {
	if err := s.checkEligibility(account); err != nil {
		return nil, err
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewValidationError("reply message is required", map[string]any{"message": "required"})
	}

	appeal, err := s.getOpen(ctx, appealID)
	if err != nil {
		return nil, err
	}
	if appeal.AccountID != account.ID {
		return nil, apperrors.NewForbidden("appeal belongs to another account")
	}
	if err := s.checkCooldown(appeal); err != nil {
		return nil, err
	}

	if _, err := s.addMessage(ctx, appeal, domain.AppealAuthorUser, &account.ID, body); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventAppealReplied, account.ID, events.AppealRepliedPayload{
		AppealID:   appeal.ID,
		AuthorType: domain.AppealAuthorUser,
	})
	return appeal, nil
}

// ModeratorReply appends a moderation response and optionally resolves the
// appeal. The appellant is notified through the event pipeline.
func (s *AppealService) ModeratorReply(ctx context.Context, moderatorID, appealID, body string, resolve bool) (*domain.Appeal, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewValidationError("reply message is required", map[string]any{"message": "required"})
	}

	appeal, err := s.getOpen(ctx, appealID)
	if err != nil {
		return nil, err
	}

	if _, err := s.addMessage(ctx, appeal, domain.AppealAuthorModerator, &moderatorID, body); err != nil {
		return nil, err
	}
	if resolve {
		if err := s.appeals.SetStatus(ctx, appeal.ID, domain.AppealStatusResolved); err != nil {
			return nil, err
		}
		appeal.Status = domain.AppealStatusResolved
	}

	s.publish(ctx, events.EventAppealReplied, appeal.AccountID, events.AppealRepliedPayload{
		AppealID:   appeal.ID,
		AuthorType: domain.AppealAuthorModerator,
	})
	return appeal, nil
}

// List returns appeals for moderation review.
func (s *AppealService) List(ctx context.Context, status domain.AppealStatus, limit, offset int) ([]domain.Appeal, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.appeals.ListByStatus(ctx, status, limit, offset)
}

func (s *AppealService) checkEligibility(account *domain.Account) error {
	switch account.Status {
	case domain.AccountStatusSuspended:
		return nil
	case domain.AccountStatusBanned:
		return apperrors.NewForbidden("banned accounts cannot submit appeals")
	default:
		return apperrors.NewConflict("no active suspension to appeal", nil)
	}
}

func (s *AppealService) checkCooldown(appeal *domain.Appeal) error {
	last := appeal.LastUserMessageAt()
	if last.IsZero() {
		return nil
	}
	elapsed := time.Since(last)
	if elapsed >= s.cooldown {
		return nil
	}
	return apperrors.NewRateLimited(int((s.cooldown - elapsed).Seconds()))
}

func (s *AppealService) getOpen(ctx context.Context, appealID string) (*domain.Appeal, error) {
	appeal, err := s.appeals.GetByID(ctx, appealID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("appeal", map[string]any{"id": appealID})
		}
		return nil, err
	}
	if appeal.Status != domain.AppealStatusOpen {
		return nil, apperrors.NewConflict("appeal is already resolved", nil)
	}
	return appeal, nil
}

func (s *AppealService) addMessage(ctx context.Context, appeal *domain.Appeal, authorType domain.AppealAuthorType, authorID *string, body string) (*domain.AppealMessage, error) {
	msg := &domain.AppealMessage{
		AppealID:   appeal.ID,
		AuthorType: authorType,
		AuthorID:   authorID,
		Body:       body,
	}
	if err := s.appeals.AddMessage(ctx, msg); err != nil {
		return nil, err
	}
	appeal.Messages = append(appeal.Messages, *msg)
	return msg, nil
}

func (s *AppealService) publish(ctx context.Context, eventType events.EventType, accountID string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		AccountID: accountID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

func preview(body string) string {
	const max = 80
	if len(body) <= max {
		return body
	}
	return body[:max]
}
