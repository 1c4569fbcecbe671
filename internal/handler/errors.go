package handler

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/ILM-AI-LTD/ilm-mathAI/internal/config"
	"github.com/ILM-AI-LTD/ilm-mathAI/internal/utils"
)

// ErrorHandler converts errors that escape the handlers into the standard
// envelope. Real causes are logged server-side; the response never leaks
// internals.
func ErrorHandler(cfg config.Config, logger zerolog.Logger) fiber.ErrorHandler {
	boundaryLogger := logger.With().Str("component", "error_handler").Logger()

	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			switch fiberErr.Code {
			case fiber.StatusRequestEntityTooLarge:
				return utils.SendError(c, fiber.StatusRequestEntityTooLarge,
					fmt.Sprintf("File too large. Maximum size is %dMB.", cfg.MaxBodySizeMB))
			case fiber.StatusNotFound:
				return utils.SendError(c, fiber.StatusNotFound, "This endpoint does not exist.")
			}
			if fiberErr.Code < fiber.StatusInternalServerError {
				return utils.SendError(c, fiberErr.Code, fiberErr.Message)
			}
		}

		boundaryLogger.Error().Err(err).Str("path", c.Path()).Str("method", c.Method()).Msg("unhandled error")
		return utils.SendError(c, fiber.StatusInternalServerError,
			"An internal server error occurred. Please try again later.")
	}
}
