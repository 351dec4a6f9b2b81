package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/flowgen/internal/api/http/handlers"
	"github.com/spec-kit/flowgen/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	Admin          *handlers.AdminHandler
	Metrics        *handlers.MetricsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/tickets", cfg.Tickets.CreateTicket)

	app.Post("/auth/admin/login", cfg.Admin.Login)

	protected := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	protected.Get("/tickets", cfg.Tickets.ListTickets)
	protected.Get("/tickets/:id/logs", cfg.Tickets.GetTicketLogs)
	protected.Get("/admin/metrics/intake", cfg.Metrics.IntakeStats)
}
