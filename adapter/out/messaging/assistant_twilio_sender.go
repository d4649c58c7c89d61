// Package messaging provides outbound messaging adapters.
package messaging

import (
	"context"
	"errors"
	"fmt"

	"assistant_server/core/port/out"
	"assistant_server/pkg/logger"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

var ErrNotConfigured = errors.New("twilio credentials not configured")

// messageCreator is the slice of the Twilio REST client this package uses.
type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioSender implements out.SMSSender.
type TwilioSender struct {
	api messageCreator
}

var _ out.SMSSender = (*TwilioSender)(nil)

func NewTwilioSender(accountSID, authToken string) *TwilioSender {
	if accountSID == "" || authToken == "" {
		return &TwilioSender{}
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioSender{api: client.Api}
}

// SendSMS is not cancellable: the Twilio client takes no context.
func (s *TwilioSender) SendSMS(ctx context.Context, from, to, body string) error {
	if s.api == nil {
		return ErrNotConfigured
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(from)
	params.SetTo(to)
	params.SetBody(body)

	msg, err := s.api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("send sms: %w", err)
	}

	sid := ""
	if msg != nil && msg.Sid != nil {
		sid = *msg.Sid
	}
	logger.WithContext(ctx).WithField("message_sid", sid).Info("SMS sent")
	return nil
}
