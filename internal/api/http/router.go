package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ontimely/admin-portal/internal/api/http/handlers"
	"github.com/ontimely/admin-portal/internal/auth"
	"github.com/ontimely/admin-portal/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health            *handlers.HealthHandler
	Session           *handlers.SessionHandler
	Password          *handlers.PasswordHandler
	Staff             *handlers.StaffHandler
	Tickets           *handlers.TicketsHandler
	Dashboard         *handlers.DashboardHandler
	CrashReports      *handlers.CrashReportsHandler
	Payments          *handlers.PaymentWebhookHandler
	Uploads           *handlers.UploadsHandler
	Email             *handlers.EmailHandler
	SessionMiddleware *auth.SessionMiddleware
	Metrics           *observability.Metrics
}

// RegisterRoutes wires HTTP routes. Routes that act for a portal operator run
// behind the session middleware; machine-facing endpoints do not.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics.Handler())
	}

	// Public endpoints.
	app.Post("/auth/password/reset/request", cfg.Password.RequestReset)
	app.Post("/auth/password/reset/confirm", cfg.Password.ConfirmReset)
	app.Post("/crash-reports", cfg.CrashReports.Submit)
	app.Post("/webhooks/payments", cfg.Payments.Receive)

	withSession := cfg.SessionMiddleware.Handle

	sessionGroup := app.Group("/auth/session", withSession)
	sessionGroup.Get("", cfg.Session.State)
	sessionGroup.Post("/login", cfg.Session.Login)
	sessionGroup.Post("/logout", cfg.Session.Logout)
	sessionGroup.Get("/me", cfg.Session.Me)

	app.Post("/auth/password/change", withSession, auth.RequireStaff(), cfg.Password.ChangePassword)

	app.Get("/dashboard/stats", withSession, auth.RequireStaff(), cfg.Dashboard.Stats)

	tickets := app.Group("/tickets", withSession, auth.RequireStaff())
	tickets.Get("", cfg.Tickets.List)
	tickets.Post("", cfg.Tickets.Create)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Patch("/:id", cfg.Tickets.Update)

	app.Get("/crash-reports", withSession, auth.RequireStaff(), cfg.CrashReports.List)
	app.Patch("/crash-reports/:id", withSession, auth.RequireStaff(), cfg.CrashReports.Resolve)

	app.Post("/email/documents", withSession, auth.RequireStaff(), cfg.Email.SendDocument)
	app.Post("/uploads/images", withSession, auth.RequireStaff(), cfg.Uploads.UploadImage)

	staff := app.Group("/staff/members", withSession)
	staff.Get("", auth.RequireAdmin(), cfg.Staff.List)
	staff.Get("/:id", auth.RequireAdmin(), cfg.Staff.Get)
	staff.Post("", auth.RequireDirector(), cfg.Staff.Create)
	staff.Put("/:id", auth.RequireDirector(), cfg.Staff.Update)
}
