package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/checkin-service/internal/api/http/handlers"
	"github.com/spec-kit/checkin-service/internal/session"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Intake  *handlers.IntakeHandler
	Session *session.CookieMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	health := app.Group("/health")
	health.Get("/live", cfg.Health.Live)
	health.Get("/ready", cfg.Health.Ready)
	health.Get("/metrics", cfg.Health.Metrics)

	intake := app.Group("", cfg.Session.Handle)
	intake.Get("/", cfg.Intake.Status)
	intake.Post("/new", cfg.Intake.SubmitNewClient)
	intake.Post("/returning", cfg.Intake.SubmitPhone)
	intake.Get("/select-contact", cfg.Intake.SelectionForm)
	intake.Post("/select-contact", cfg.Intake.SelectContact)
	intake.Get("/confirm", cfg.Intake.Confirm)
	intake.Get("/issue", cfg.Intake.IssueForm)
	intake.Post("/issue", cfg.Intake.SubmitIssue)
	intake.Post("/create-ticket", cfg.Intake.CreateTicket)
	intake.Get("/payment", cfg.Intake.Payment)
	intake.Post("/complete", cfg.Intake.Complete)
	intake.Post("/reset", cfg.Intake.Reset)
}
