package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/classpulse/support-service/internal/api/http/handlers"
	"github.com/classpulse/support-service/internal/auth"
	"github.com/classpulse/support-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Support        *handlers.SupportHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, auth.RequireAnyRole(), cfg.Auth.Me)

	support := app.Group("/support", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	support.Post("", cfg.Support.Create)
	support.Get("", cfg.Support.List)
	support.Get("/assignees", cfg.Support.Assignees)
	support.Get("/:id", cfg.Support.Get)
	support.Get("/:id/history", cfg.Support.History)
	support.Post("/:id/response", cfg.Support.Respond)
	support.Patch("/:id/status", cfg.Support.UpdateStatus)
	support.Post("/:id/close", cfg.Support.Close)
	support.Post("/:id/reopen", cfg.Support.Reopen)
	support.Post("/:id/assign", cfg.Support.Assign)
	support.Post("/:id/reassign", cfg.Support.Reassign)
	support.Post("/:id/escalate", cfg.Support.Escalate)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin))
	admin.Get("/users", cfg.Admin.ListUsers)
	admin.Post("/users/:id/suspend", cfg.Admin.SuspendUser)
	admin.Post("/users/:id/activate", cfg.Admin.ActivateUser)
	admin.Get("/teachers/pending", cfg.Admin.PendingTeachers)
	admin.Post("/teachers/:id/approve", cfg.Admin.ApproveTeacher)
	admin.Post("/teachers/:id/reject", cfg.Admin.RejectTeacher)
}
