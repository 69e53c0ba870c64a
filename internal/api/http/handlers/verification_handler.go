package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ghost-league/internal/api/dto"
	"github.com/spec-kit/ghost-league/internal/service"
)

// VerificationHandler exposes the email verification endpoints.
type VerificationHandler struct {
	auth *service.AuthService
}

// NewVerificationHandler constructs handler.
func NewVerificationHandler(authService *service.AuthService) *VerificationHandler {
	return &VerificationHandler{auth: authService}
}

// VerifyAndLogin handles POST /auth-verification/verify-and-login.
func (h *VerificationHandler) VerifyAndLogin(c *fiber.Ctx) error {
	var req dto.VerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Code == "" {
		return fiber.NewError(http.StatusBadRequest, "email and code required")
	}

	result, err := h.auth.VerifyEmailAndLogin(c.Context(), req.Email, req.Code)
	if err != nil {
		return err
	}

	return c.JSON(dto.SessionResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      dto.NewUserResponse(result.Account),
	})
}

// ResendCode handles POST /auth-verification/resend-code.
func (h *VerificationHandler) ResendCode(c *fiber.Ctx) error {
	var req dto.ResendCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" {
		return fiber.NewError(http.StatusBadRequest, "email required")
	}

	preview, err := h.auth.ResendCode(c.Context(), req.Email)
	if err != nil {
		return err
	}

	return c.JSON(dto.ResendCodeResponse{Sent: true, PreviewURL: preview})
}
