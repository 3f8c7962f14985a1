package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Mappings       *handlers.MappingsHandler
	Notifications  *handlers.NotificationsHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes. Override and status changes are admin
// operations; mapping management is super-admin only.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	api := app.Group("/api/v1", cfg.AuthMiddleware.Handle)

	tickets := api.Group("/tickets")
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/stats", auth.RequireRole(domain.RoleAdmin, domain.RoleSuperAdmin), cfg.Tickets.Stats)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id/status", auth.RequireRole(domain.RoleAdmin, domain.RoleSuperAdmin), cfg.Tickets.UpdateStatus)
	tickets.Post("/:id/override", auth.RequireRole(domain.RoleAdmin, domain.RoleSuperAdmin), cfg.Tickets.OverrideDivision)

	mappings := api.Group("/mappings", auth.RequireRole(domain.RoleSuperAdmin))
	mappings.Post("", cfg.Mappings.CreateMapping)
	mappings.Get("", cfg.Mappings.ListMappings)
	mappings.Patch("/:id", cfg.Mappings.SetMappingActive)

	notifications := api.Group("/notifications", auth.RequireRole(domain.RoleAdmin, domain.RoleSuperAdmin))
	notifications.Get("", cfg.Notifications.ListNotifications)
	notifications.Post("/read-all", cfg.Notifications.MarkAllRead)
	notifications.Patch("/:id/read", cfg.Notifications.MarkRead)
}
