package utils

import "github.com/gofiber/fiber/v2"

// ErrorResponse is the envelope returned for every failed request,
// regardless of cause.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// SendError sends the standard error envelope with the given status code.
func SendError(c *fiber.Ctx, status int, message string) error {
	if message == "" {
		message = "error"
	}
	if status == 0 {
		status = fiber.StatusInternalServerError
	}

	return c.Status(status).JSON(ErrorResponse{
		Success: false,
		Error:   message,
	})
}
