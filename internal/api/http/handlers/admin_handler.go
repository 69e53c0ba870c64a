package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/spec-kit/ghost-league/internal/api/dto"
	"github.com/spec-kit/ghost-league/internal/auth"
	"github.com/spec-kit/ghost-league/internal/domain"
	"github.com/spec-kit/ghost-league/internal/service"
)

// AdminHandler exposes moderation endpoints.
type AdminHandler struct {
	accounts *service.AccountService
	appeals  *service.AppealService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(accounts *service.AccountService, appeals *service.AppealService) *AdminHandler {
	return &AdminHandler{accounts: accounts, appeals: appeals}
}

// ListAppeals handles GET /admin/appeals.
func (h *AdminHandler) ListAppeals(c *fiber.Ctx) error {
	status := domain.AppealStatus(c.Query("status", string(domain.AppealStatusOpen)))
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	appeals, err := h.appeals.List(c.Context(), status, limit, offset)
	if err != nil {
		return err
	}

	out := make([]dto.AppealResponse, 0, len(appeals))
	for i := range appeals {
		out = append(out, dto.NewAppealResponse(&appeals[i]))
	}
	return c.JSON(fiber.Map{"appeals": out})
}

// ReplyAppeal handles PUT /admin/appeals/:id/reply.
func (h *AdminHandler) ReplyAppeal(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	var req dto.AppealReplyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	appeal, err := h.appeals.ModeratorReply(c.Context(), principal.Account.ID, c.Params("id"), req.Message, req.Resolve)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewAppealResponse(appeal))
}

// SetAccountStatus handles PUT /admin/users/:id/status.
func (h *AdminHandler) SetAccountStatus(c *fiber.Ctx) error {
	var req dto.SetStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	// c.Params returns a string aliasing fasthttp's reusable buffer; the ID
	// outlives this request via the published status-changed event, so it
	// must be copied.
	account, err := h.accounts.SetStatus(c.Context(), utils.CopyString(c.Params("id")), req.Status, req.Reason, req.SuspensionDays)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"user":   dto.NewUserResponse(account),
		"status": account.Status,
	})
}
