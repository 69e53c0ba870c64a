package ratelimit

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/ghost-league/pkg/util"
)

// ByIP returns a fiber handler that throttles requests per client IP.
func ByIP(limiter Limiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		allowed, retryAfter, err := limiter.Allow(c.UserContext(), c.IP())
		if err != nil {
			// A broken limiter backend should not take down the auth surface.
			return c.Next()
		}
		if !allowed {
			seconds := int(retryAfter.Seconds())
			if seconds < 1 {
				seconds = 1
			}
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(seconds))
			return apperrors.NewRateLimited(seconds)
		}
		return c.Next()
	}
}
