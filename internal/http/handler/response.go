package handler

import "github.com/gofiber/fiber/v2"

// successPayload is the envelope returned by every successful operation:
// a human-readable message plus an optional payload.
type successPayload struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func writeSuccess(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(successPayload{
		Success: true,
		Message: message,
		Data:    data,
	})
}
