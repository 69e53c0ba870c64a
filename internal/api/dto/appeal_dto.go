package dto

import (
	"time"

	"github.com/spec-kit/ghost-league/internal/domain"
)

// AppealSubmitRequest opens or continues an appeal.
type AppealSubmitRequest struct {
	Message string `json:"message"`
}

// AppealReplyRequest appends to an appeal conversation.
type AppealReplyRequest struct {
	Message string `json:"message"`
	Resolve bool   `json:"resolve,omitempty"`
}

// AppealMessageResponse is one conversation entry.
type AppealMessageResponse struct {
	ID        string                  `json:"id"`
	From      domain.AppealAuthorType `json:"from"`
	Message   string                  `json:"message"`
	CreatedAt time.Time               `json:"createdAt"`
}

// AppealResponse is the full appeal thread.
type AppealResponse struct {
	ID           string                  `json:"id"`
	AccountID    string                  `json:"accountId"`
	Status       domain.AppealStatus     `json:"status"`
	Conversation []AppealMessageResponse `json:"conversation"`
	CreatedAt    time.Time               `json:"createdAt"`
	UpdatedAt    time.Time               `json:"updatedAt"`
}

// NewAppealResponse maps a domain appeal.
func NewAppealResponse(appeal *domain.Appeal) AppealResponse {
	conversation := make([]AppealMessageResponse, 0, len(appeal.Messages))
	for _, msg := range appeal.Messages {
		conversation = append(conversation, AppealMessageResponse{
			ID:        msg.ID,
			From:      msg.AuthorType,
			Message:   msg.Body,
			CreatedAt: msg.CreatedAt,
		})
	}
	return AppealResponse{
		ID:           appeal.ID,
		AccountID:    appeal.AccountID,
		Status:       appeal.Status,
		Conversation: conversation,
		CreatedAt:    appeal.CreatedAt,
		UpdatedAt:    appeal.UpdatedAt,
	}
}
