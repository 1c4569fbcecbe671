package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ILM-AI-LTD/ilm-mathAI/internal/config"
	"github.com/ILM-AI-LTD/ilm-mathAI/internal/handler"
	"github.com/ILM-AI-LTD/ilm-mathAI/internal/observability"
	"github.com/ILM-AI-LTD/ilm-mathAI/internal/utils"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	EvaluationHandler *handler.EvaluationHandler
	RateLimiter       fiber.Handler
}

// Register wires the HTTP routes into the fiber application. The catch-all
// must be registered last so every unknown route gets the error envelope.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Math Evaluation API is running.")
	})
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	rateLimiter := deps.RateLimiter
	if rateLimiter == nil {
		rateLimiter = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.EvaluationHandler != nil {
		deps.EvaluationHandler.Register(api.Group("", rateLimiter))
	}

	app.Use(func(c *fiber.Ctx) error {
		return utils.SendError(c, fiber.StatusNotFound, "This endpoint does not exist.")
	})
}
