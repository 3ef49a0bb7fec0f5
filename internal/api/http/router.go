package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fluxdesk/helpdesk/internal/api/http/handlers"
	"github.com/fluxdesk/helpdesk/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	Users          *handlers.UsersHandler
	Departments    *handlers.DepartmentsHandler
	Reports        *handlers.ReportsHandler
	EmailSettings  *handlers.EmailSettingsHandler
	Metrics        *handlers.MetricsHandler
	WS             *handlers.WSHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Users.Login)

	// Token travels as a query parameter on the upgrade request.
	app.Get("/ws/notifications", cfg.WS.Upgrade)

	api := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())

	tickets := api.Group("/tickets")
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Post("/suggestions", cfg.Tickets.Suggest)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/comments", cfg.Tickets.Comment)
	tickets.Post("/:id/reopen", cfg.Tickets.Reopen)
	tickets.Patch("/:id/assignee", auth.RequireAdmin(), cfg.Tickets.Assign)
	tickets.Post("/:id/claim", auth.RequireAdmin(), cfg.Tickets.Claim)
	tickets.Patch("/:id/status", auth.RequireAdmin(), cfg.Tickets.UpdateStatus)
	tickets.Post("/:id/finalize", auth.RequireAdmin(), cfg.Tickets.Finalize)
	tickets.Delete("/:id", auth.RequireAdmin(), cfg.Tickets.DeleteTicket)

	users := api.Group("/users")
	users.Get("/me", cfg.Users.Me)
	users.Patch("/me", cfg.Users.UpdateProfile)
	users.Post("/me/password", cfg.Users.ChangePassword)
	users.Post("", auth.RequireAdmin(), cfg.Users.Register)
	users.Get("", auth.RequireAdmin(), cfg.Users.List)
	users.Delete("/:id", auth.RequireAdmin(), cfg.Users.Delete)

	departments := api.Group("/departments")
	departments.Get("", cfg.Departments.List)
	departments.Post("", auth.RequireAdmin(), cfg.Departments.Create)
	departments.Put("/:id", auth.RequireAdmin(), cfg.Departments.Rename)
	departments.Delete("/:id", auth.RequireAdmin(), cfg.Departments.Delete)

	settings := api.Group("/settings/email", auth.RequireAdmin())
	settings.Get("", cfg.EmailSettings.Get)
	settings.Put("", cfg.EmailSettings.Update)
	settings.Post("/test", cfg.EmailSettings.SendTest)

	api.Get("/reports/recurring", auth.RequireAdmin(), cfg.Reports.RecurringProblems)
	api.Get("/metrics", auth.RequireAdmin(), cfg.Metrics.Snapshot)
}
