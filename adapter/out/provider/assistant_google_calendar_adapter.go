package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"assistant_server/core/domain"
	"assistant_server/core/port/out"
	"assistant_server/pkg/logger"

	"github.com/sony/gobreaker"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const dateLayout = "2006-01-02"

// GoogleCalendarConfig holds the OAuth client registration.
type GoogleCalendarConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// GoogleCalendarAdapter implements CalendarProviderPort for Google Calendar.
type GoogleCalendarAdapter struct {
	oauthConfig *oauth2.Config
	cb          *gobreaker.CircuitBreaker
	// endpoint overrides the API base URL in tests.
	endpoint string
}

var _ out.CalendarProviderPort = (*GoogleCalendarAdapter)(nil)

func NewGoogleCalendarAdapter(cfg GoogleCalendarConfig) *GoogleCalendarAdapter {
	oauthConfig := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       []string{calendar.CalendarScope},
		Endpoint:     google.Endpoint,
	}

	cbSettings := gobreaker.Settings{
		Name:        "google-calendar-api",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.ConsecutiveFailures > 5 ||
				(counts.Requests >= 10 && failureRatio >= 0.6)
		},
		IsSuccessful: func(err error) bool {
			var nce *nonCircuitError
			return err == nil || errors.As(err, &nce)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(map[string]any{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	}

	return &GoogleCalendarAdapter{
		oauthConfig: oauthConfig,
		cb:          gobreaker.NewCircuitBreaker(cbSettings),
	}
}

// OAuthConfig exposes the client registration for the consent flow.
func (a *GoogleCalendarAdapter) OAuthConfig() *oauth2.Config {
	return a.oauthConfig
}

func (a *GoogleCalendarAdapter) getService(ctx context.Context, token *oauth2.Token) (*calendar.Service, error) {
	opts := []option.ClientOption{option.WithHTTPClient(a.oauthConfig.Client(ctx, token))}
	if a.endpoint != "" {
		opts = append(opts, option.WithEndpoint(a.endpoint))
	}
	return calendar.NewService(ctx, opts...)
}

// ListEvents expands recurring events and orders them by start time.
func (a *GoogleCalendarAdapter) ListEvents(ctx context.Context, token *oauth2.Token, query domain.EventQuery) ([]*domain.CalendarEvent, error) {
	svc, err := a.getService(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	calendarID := query.CalendarID
	if calendarID == "" {
		calendarID = domain.PrimaryCalendarID
	}

	req := svc.Events.List(calendarID).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx)
	if !query.TimeMin.IsZero() {
		req = req.TimeMin(query.TimeMin.Format(time.RFC3339))
	}
	if !query.TimeMax.IsZero() {
		req = req.TimeMax(query.TimeMax.Format(time.RFC3339))
	}
	if query.MaxResults > 0 {
		req = req.MaxResults(int64(query.MaxResults))
	}

	var resp *calendar.Events
	err = a.execute("events.list", func() error {
		var callErr error
		resp, callErr = req.Do()
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	events := make([]*domain.CalendarEvent, 0, len(resp.Items))
	for _, item := range resp.Items {
		event, convErr := convertEvent(item)
		if convErr != nil {
			logger.WithContext(ctx).WithError(convErr).WithField("event_id", item.Id).Warn("Skipping event with malformed time")
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

func (a *GoogleCalendarAdapter) CreateEvent(ctx context.Context, token *oauth2.Token, calendarID string, details *domain.MeetingDetails) (*domain.CalendarEvent, error) {
	svc, err := a.getService(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	if calendarID == "" {
		calendarID = domain.PrimaryCalendarID
	}

	var created *calendar.Event
	err = a.execute("events.insert", func() error {
		var callErr error
		created, callErr = svc.Events.Insert(calendarID, toGoogleEvent(details)).
			SendUpdates("none").
			Context(ctx).Do()
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	event, convErr := convertEvent(created)
	if convErr != nil {
		// The event exists; only its echoed times are unusable.
		logger.WithContext(ctx).WithError(convErr).WithField("event_id", created.Id).Warn("Created event has malformed time")
	}
	return event, nil
}

// execute runs fn behind the circuit breaker. Client errors are passed
// through without counting as breaker failures.
func (a *GoogleCalendarAdapter) execute(operation string, fn func() error) error {
	_, err := a.cb.Execute(func() (interface{}, error) {
		if err := fn(); err != nil {
			var apiErr *googleapi.Error
			if errors.As(err, &apiErr) && apiErr.Code >= 400 && apiErr.Code < 500 && apiErr.Code != http.StatusTooManyRequests {
				return nil, &nonCircuitError{err: err}
			}
			return nil, err
		}
		return nil, nil
	})

	var nce *nonCircuitError
	if errors.As(err, &nce) {
		return nce.err
	}
	if err != nil {
		logger.WithFields(map[string]any{
			"operation": operation,
			"state":     a.cb.State().String(),
		}).WithError(err).Warn("Calendar API call failed")
	}
	return err
}

type nonCircuitError struct {
	err error
}

func (e *nonCircuitError) Error() string { return e.err.Error() }
func (e *nonCircuitError) Unwrap() error { return e.err }

// convertEvent reports a malformed start or end. Missing times stay zero.
func convertEvent(event *calendar.Event) (*domain.CalendarEvent, error) {
	result := &domain.CalendarEvent{
		ID:          event.Id,
		Summary:     event.Summary,
		Description: event.Description,
		HTMLLink:    event.HtmlLink,
	}

	var err error
	if result.Start, result.AllDay, err = parseEventTime(event.Start); err != nil {
		return result, fmt.Errorf("event %s start: %w", event.Id, err)
	}
	if result.End, _, err = parseEventTime(event.End); err != nil {
		return result, fmt.Errorf("event %s end: %w", event.Id, err)
	}
	return result, nil
}

// parseEventTime reads DateTime, falling back to the all-day Date.
func parseEventTime(t *calendar.EventDateTime) (time.Time, bool, error) {
	switch {
	case t == nil:
		return time.Time{}, false, nil
	case t.DateTime != "":
		parsed, err := time.Parse(time.RFC3339, t.DateTime)
		return parsed, false, err
	case t.Date != "":
		parsed, err := time.Parse(dateLayout, t.Date)
		return parsed, true, err
	default:
		return time.Time{}, false, nil
	}
}

func toGoogleEvent(details *domain.MeetingDetails) *calendar.Event {
	tz := details.StartTime.Location().String()
	if tz == "Local" || tz == "" {
		tz = "UTC"
	}
	return &calendar.Event{
		Summary:     details.Summary,
		Description: details.Description,
		Start: &calendar.EventDateTime{
			DateTime: details.StartTime.Format(time.RFC3339),
			TimeZone: tz,
		},
		End: &calendar.EventDateTime{
			DateTime: details.EndTime.Format(time.RFC3339),
			TimeZone: tz,
		},
	}
}
