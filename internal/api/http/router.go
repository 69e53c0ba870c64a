package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ghost-league/internal/api/http/handlers"
	"github.com/spec-kit/ghost-league/internal/auth"
	"github.com/spec-kit/ghost-league/internal/ratelimit"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health          *handlers.HealthHandler
	Auth            *handlers.AuthHandler
	Verification    *handlers.VerificationHandler
	Users           *handlers.UsersHandler
	Admin           *handlers.AdminHandler
	AuthMiddleware  *auth.AuthMiddleware
	AuthRateLimiter ratelimit.Limiter
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	throttled := ratelimit.ByIP(cfg.AuthRateLimiter)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", throttled, cfg.Auth.Register)
	authGroup.Post("/login", throttled, cfg.Auth.Login)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, auth.RequireAccount(), cfg.Auth.Me)

	verification := app.Group("/auth-verification")
	verification.Post("/verify-and-login", throttled, cfg.Verification.VerifyAndLogin)
	verification.Post("/resend-code", throttled, cfg.Verification.ResendCode)

	users := app.Group("/users", cfg.AuthMiddleware.Handle, auth.RequireAccount())
	users.Get("/status", cfg.Users.Status)
	users.Get("/support/appeal", cfg.Users.GetAppeal)
	users.Put("/support/appeal", cfg.Users.SubmitAppeal)
	users.Put("/support/appeal/:id/reply", cfg.Users.ReplyAppeal)
	users.Get("/notifications", cfg.Users.ListNotifications)
	users.Post("/notifications/mark-all-read", cfg.Users.MarkAllNotificationsRead)
	users.Put("/notifications/:id/read", cfg.Users.MarkNotificationRead)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireModerator())
	admin.Get("/appeals", cfg.Admin.ListAppeals)
	admin.Put("/appeals/:id/reply", cfg.Admin.ReplyAppeal)
	admin.Put("/users/:id/status", cfg.Admin.SetAccountStatus)
}
