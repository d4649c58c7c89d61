package out

import (
	"context"

	"assistant_server/core/domain"

	"golang.org/x/oauth2"
)

// CalendarProviderPort is the outbound port for the external calendar.
type CalendarProviderPort interface {
	ListEvents(ctx context.Context, token *oauth2.Token, query domain.EventQuery) ([]*domain.CalendarEvent, error)
	CreateEvent(ctx context.Context, token *oauth2.Token, calendarID string, details *domain.MeetingDetails) (*domain.CalendarEvent, error)
}
