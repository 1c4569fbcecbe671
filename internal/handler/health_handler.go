package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ILM-AI-LTD/ilm-mathAI/internal/config"
)

// HealthResponse is the payload returned by the health probe.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// HealthCheck returns a handler that reports service status.
func HealthCheck(cfg config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(HealthResponse{
			Status:  "healthy",
			Service: cfg.AppName,
			Version: cfg.AppVersion,
		})
	}
}
