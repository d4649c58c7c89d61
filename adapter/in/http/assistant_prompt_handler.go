// Package http holds the Fiber handlers.
package http

import (
	"strings"

	"assistant_server/core/port/in"
	"assistant_server/infra/middleware"
	"assistant_server/pkg/apperr"
	"assistant_server/pkg/response"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
)

type promptRequest struct {
	Prompt *string `json:"prompt"`
}

// PromptHandler is the single conversational endpoint.
type PromptHandler struct {
	router in.PromptRouter
}

func NewPromptHandler(router in.PromptRouter) *PromptHandler {
	return &PromptHandler{router: router}
}

func (h *PromptHandler) Register(app fiber.Router) {
	app.Post("/api/v2", middleware.NoCache(), h.Prompt)
	app.Post("/api/v2/prompt", middleware.NoCache(), h.Prompt)
}

// Prompt decodes the body itself so a missing Content-Type still parses.
func (h *PromptHandler) Prompt(c *fiber.Ctx) error {
	var req promptRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return apperr.BadRequest("Invalid request body").WithError(err)
	}
	if req.Prompt == nil || strings.TrimSpace(*req.Prompt) == "" {
		return apperr.InvalidInput("prompt", "Prompt is required")
	}

	resp, err := h.router.Route(c.UserContext(), *req.Prompt)
	if err != nil {
		return err
	}
	return response.OK(c, resp.Text)
}
