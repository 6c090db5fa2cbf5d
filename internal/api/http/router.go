package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/event-service/internal/api/http/handlers"
	"github.com/spec-kit/event-service/internal/auth"
	"github.com/spec-kit/event-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Events         *handlers.EventsHandler
	Notifications  *handlers.NotificationsHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)

	// Public event browsing. The register route is declared before the
	// parameterized detail route so it wins the match.
	app.Get("/events", cfg.Events.List)

	authed := app.Group("", cfg.AuthMiddleware.Handle)

	authed.Post("/events/register/:id", auth.RequireAuthenticated(), cfg.Events.Register)
	authed.Get("/events/registered", auth.RequireAuthenticated(), cfg.Events.Registered)

	app.Get("/events/:id", cfg.Events.Get)

	authed.Post("/addEvent", auth.RequireRole(domain.RoleOrganizer), cfg.Events.Create)
	authed.Put("/events/:id", auth.RequireRole(domain.RoleOrganizer, domain.RoleAdmin), cfg.Events.Update)
	authed.Delete("/events/:id", auth.RequireRole(domain.RoleOrganizer, domain.RoleAdmin), cfg.Events.Delete)

	authed.Post("/events/:id/feedback", auth.RequireAuthenticated(), cfg.Events.AddFeedback)
	authed.Get("/events/:id/feedback", auth.RequireRole(domain.RoleOrganizer), cfg.Events.ListFeedback)

	authed.Get("/organizer/events", auth.RequireRole(domain.RoleOrganizer), cfg.Events.OrganizerEvents)
	authed.Get("/organizer/events/:id", auth.RequireRole(domain.RoleOrganizer), cfg.Events.OrganizerEvent)

	authed.Get("/profile", auth.RequireAuthenticated(), cfg.Users.Profile)
	authed.Put("/profile", auth.RequireAuthenticated(), cfg.Users.UpdateProfile)

	authed.Get("/notifications", auth.RequireAuthenticated(), cfg.Notifications.List)
	authed.Put("/notifications/:id/read", auth.RequireAuthenticated(), cfg.Notifications.MarkRead)

	admin := authed.Group("/admin", auth.RequireRole(domain.RoleAdmin))
	admin.Get("/users", cfg.Admin.ListUsers)
	admin.Get("/organizers", cfg.Admin.ListOrganizers)
	admin.Put("/users/:id/ban", cfg.Admin.BanUser)
	admin.Put("/users/:id/unban", cfg.Admin.UnbanUser)
	admin.Put("/users/:id/organizer", cfg.Admin.PromoteOrganizer)
	admin.Put("/users/:id/admin", cfg.Admin.PromoteAdmin)
	admin.Delete("/users/:id", cfg.Admin.DeleteUser)
	admin.Get("/events", cfg.Admin.ListEvents)
	admin.Delete("/events/:id", cfg.Admin.DeleteEvent)
	admin.Get("/reports/user-activity", cfg.Admin.UserActivityReport)
}
