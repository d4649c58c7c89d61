// Package response writes the JSON envelopes the API returns.
package response

import (
	"github.com/gofiber/fiber/v2"
)

// Prompt is the success envelope of the prompt endpoint.
type Prompt struct {
	Success  bool   `json:"success"`
	Response string `json:"response"`
}

// Error is the failure envelope of every JSON endpoint.
type Error struct {
	Error string `json:"error"`
}

func OK(c *fiber.Ctx, text string) error {
	return c.JSON(Prompt{Success: true, Response: text})
}

func Fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(Error{Error: message})
}

func BadRequest(c *fiber.Ctx, message string) error {
	return Fail(c, fiber.StatusBadRequest, message)
}

// InternalError never carries detail.
func InternalError(c *fiber.Ctx) error {
	return Fail(c, fiber.StatusInternalServerError, "Internal server error")
}
