// Package guidanceserver exposes the assessment pipeline over HTTP.
package guidanceserver

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nerkoux/vocate/internal/engine"
)

// New builds the HTTP application with all routes registered.
func New() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "vocate",
		DisableStartupMessage: true,
	})

	api := app.Group("/api")
	api.Post("/personality/score", handleScore)
	api.Post("/career-guidance", handleGuidance)
	api.Post("/assessment/complete", handleAssessmentComplete)
	api.Get("/guidance/:userId", handleGetGuidance)

	app.Get("/metrics", func(c *fiber.Ctx) error {
		c.Type("txt")
		return c.SendString(engine.FormatMetrics())
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	return app
}
