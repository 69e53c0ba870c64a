package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ghost-league/internal/domain"
	"github.com/spec-kit/ghost-league/internal/events"
	"github.com/spec-kit/ghost-league/internal/repository"
	apperrors "github.com/spec-kit/ghost-league/pkg/util"
)

// AccountService owns account status reads and moderation transitions.
type AccountService struct {
	accounts   repository.AccountRepository
	dispatcher events.Dispatcher
}

// NewAccountService builds the service.
func NewAccountService(accounts repository.AccountRepository, dispatcher events.Dispatcher) *AccountService {
	return &AccountService{accounts: accounts, dispatcher: dispatcher}
}

// StatusResult is the account-status view surfaced to the client gate.
type StatusResult struct {
	Status         domain.AccountStatus
	Username       string
	Reason         string
	SuspendedAt    *time.Time
	SuspensionDays *int
}

// Status reports the caller's account status. A suspension whose window has
// fully elapsed is reinstated before reporting.
func (s *AccountService) Status(ctx context.Context, account *domain.Account) (*StatusResult, error) {
	if account.SuspensionElapsed(time.Now()) {
		if err := s.accounts.SetStatus(ctx, account.ID, domain.AccountStatusActive, "", nil); err != nil {
			return nil, err
		}
		old := account.Status
		account.Status = domain.AccountStatusActive
		account.StatusReason = ""
		account.SuspendedAt = nil
		account.SuspensionDays = nil

		s.publish(ctx, account.ID, events.AccountStatusChangedPayload{
			OldStatus: old,
			NewStatus: domain.AccountStatusActive,
			Reason:    "suspension elapsed",
		})
	}

	return &StatusResult{
		Status:         account.Status,
		Username:       account.Username,
		Reason:         account.StatusReason,
		SuspendedAt:    account.SuspendedAt,
		SuspensionDays: account.SuspensionDays,
	}, nil
}

// SetStatus applies a moderation action to the target account.
func (s *AccountService) SetStatus(ctx context.Context, targetID string, status domain.AccountStatus, reason string, suspensionDays *int) (*domain.Account, error) {
	switch status {
	case domain.AccountStatusActive, domain.AccountStatusSuspended, domain.AccountStatusBanned:
	default:
		return nil, apperrors.NewValidationError("unknown account status", map[string]any{"status": string(status)})
	}
	if status == domain.AccountStatusSuspended && suspensionDays != nil && *suspensionDays <= 0 {
		return nil, apperrors.NewValidationError("suspension duration must be positive", map[string]any{"suspension_days": *suspensionDays})
	}

	target, err := s.accounts.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("account", map[string]any{"id": targetID})
		}
		return nil, err
	}
	if target.Status == status {
		return target, nil
	}

	if err := s.accounts.SetStatus(ctx, targetID, status, reason, suspensionDays); err != nil {
		return nil, err
	}

	old := target.Status
	target.Status = status
	target.StatusReason = reason
	target.SuspensionDays = suspensionDays
	if status == domain.AccountStatusSuspended {
		now := time.Now()
		target.SuspendedAt = &now
	} else {
		target.SuspendedAt = nil
	}

	s.publish(ctx, targetID, events.AccountStatusChangedPayload{
		OldStatus: old,
		NewStatus: status,
		Reason:    reason,
		Days:      suspensionDays,
	})
	return target, nil
}

func (s *AccountService) publish(ctx context.Context, accountID string, payload events.AccountStatusChangedPayload) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventAccountStatusChanged,
		AccountID: accountID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
