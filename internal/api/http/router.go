package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-report-service/internal/api/http/handlers"
	"github.com/spec-kit/ticket-report-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Webhook *handlers.WebhookHandler
	Reports *handlers.ReportsHandler
	Auth    *auth.WebhookMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/webhook", cfg.Auth.Handle, cfg.Webhook.Receive)

	app.Get("/reports/:ticketID/status", cfg.Reports.GetRunStatus)
	app.Get("/reports/:ticketID/history", cfg.Reports.GetRunHistory)
}
