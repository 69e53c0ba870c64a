package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// RequireAccount ensures a caller is authenticated.
func RequireAccount() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		return c.Next()
	}
}

// RequireModerator ensures the caller holds a moderation-capable role.
func RequireModerator() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		if !principal.Role.IsModerator() {
			return fiber.NewError(http.StatusForbidden, "moderator role required")
		}
		return c.Next()
	}
}
