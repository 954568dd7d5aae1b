package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trugen/triage-service/internal/api/http/handlers"
	"github.com/trugen/triage-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health       *handlers.HealthHandler
	Tickets      *handlers.TicketsHandler
	Admin        *handlers.AdminHandler
	TokenManager *auth.TokenManager
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Post("/tickets", cfg.Tickets.CreateTicket)
	app.Get("/tickets/:id", cfg.Tickets.GetTicket)

	app.Post("/auth/admin/login", cfg.Admin.Login)

	admin := app.Group("/admin", auth.RequireAdmin(cfg.TokenManager))
	admin.Get("/tickets", cfg.Admin.ListTickets)
	admin.Get("/tickets/:id", cfg.Admin.GetTicket)
	admin.Post("/tickets/:id/resolve", cfg.Admin.ResolveTicket)
	admin.Post("/tickets/:id/reopen", cfg.Admin.ReopenTicket)
	admin.Get("/managers", cfg.Admin.ListManagers)
	admin.Get("/stats", cfg.Admin.Stats)
}
