package http

import (
	"assistant_server/core/port/out"
	"assistant_server/pkg/logger"
	"assistant_server/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// MissedCallReply is texted back to anyone whose call went unanswered.
const MissedCallReply = "Hi! This is the virtual assistant for the business you just called. Sorry we missed you. An agent will get back to you shortly."

type WebhookHandler struct {
	sms out.SMSSender
}

func NewWebhookHandler(sms out.SMSSender) *WebhookHandler {
	return &WebhookHandler{sms: sms}
}

func (h *WebhookHandler) Register(app fiber.Router) {
	app.Post("/api/callbacks/twilio-webhook", h.Twilio)
}

// Twilio answers a missed-call webhook by texting the caller from the
// number they dialed.
func (h *WebhookHandler) Twilio(c *fiber.Ctx) error {
	from := c.FormValue("From")
	to := c.FormValue("To")
	if from == "" || to == "" {
		return response.BadRequest(c, "Missing From or To field")
	}

	log := logger.WithContext(c.UserContext())
	log.Info("Twilio webhook received")

	if err := h.sms.SendSMS(c.UserContext(), to, from, MissedCallReply); err != nil {
		log.WithError(err).Error("Missed-call reply failed")
		return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
	}
	return c.SendString("SMS Sent")
}
