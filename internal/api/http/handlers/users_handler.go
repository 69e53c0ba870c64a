package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ghost-league/internal/api/dto"
	"github.com/spec-kit/ghost-league/internal/auth"
	"github.com/spec-kit/ghost-league/internal/service"
)

// UsersHandler exposes the member-facing status, appeal and notification
// endpoints.
type UsersHandler struct {
	accounts      *service.AccountService
	appeals       *service.AppealService
	notifications *service.NotificationService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(accounts *service.AccountService, appeals *service.AppealService, notifications *service.NotificationService) *UsersHandler {
	return &UsersHandler{accounts: accounts, appeals: appeals, notifications: notifications}
}

// Status handles GET /users/status.
func (h *UsersHandler) Status(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	result, err := h.accounts.Status(c.Context(), principal.Account)
	if err != nil {
		return err
	}

	return c.JSON(dto.StatusResponse{
		Status:                 result.Status,
		Username:               result.Username,
		Reason:                 result.Reason,
		SuspensionDate:         result.SuspendedAt,
		SuspensionDurationDays: result.SuspensionDays,
	})
}

// GetAppeal handles GET /users/support/appeal.
func (h *UsersHandler) GetAppeal(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	appeal, err := h.appeals.GetForAccount(c.Context(), principal.Account.ID)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewAppealResponse(appeal))
}

// SubmitAppeal handles PUT /users/support/appeal.
func (h *UsersHandler) SubmitAppeal(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	var req dto.AppealSubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	appeal, err := h.appeals.Submit(c.Context(), principal.Account, req.Message)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewAppealResponse(appeal))
}

// ReplyAppeal handles PUT /users/support/appeal/:id/reply.
func (h *UsersHandler) ReplyAppeal(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	var req dto.AppealReplyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	appeal, err := h.appeals.Reply(c.Context(), principal.Account, c.Params("id"), req.Message)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewAppealResponse(appeal))
}

// ListNotifications handles GET /users/notifications.
func (h *UsersHandler) ListNotifications(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)

	notifications, err := h.notifications.List(c.Context(), principal.Account.ID, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"notifications": dto.NewNotificationResponses(notifications)})
}

// MarkNotificationRead handles PUT /users/notifications/:id/read.
func (h *UsersHandler) MarkNotificationRead(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	if err := h.notifications.MarkRead(c.Context(), principal.Account.ID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// MarkAllNotificationsRead handles POST /users/notifications/mark-all-read.
func (h *UsersHandler) MarkAllNotificationsRead(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	if err := h.notifications.MarkAllRead(c.Context(), principal.Account.ID); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
