// Package calendar resolves a user's stored grant into an authorized
// calendar session.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"assistant_server/core/domain"
	"assistant_server/core/port/out"
	"assistant_server/pkg/apperr"
	"assistant_server/pkg/logger"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// Connector builds calendar sessions from stored OAuth grants.
type Connector struct {
	accounts out.AccountRepository
	provider out.CalendarProviderPort
	now      func() time.Time
}

func NewConnector(accounts out.AccountRepository, provider out.CalendarProviderPort) *Connector {
	return &Connector{
		accounts: accounts,
		provider: provider,
		now:      time.Now,
	}
}

// Connect returns domain.ErrNotConnected when the user has no usable grant.
// Store failures come back as an apperr UPSTREAM_FAILURE.
func (c *Connector) Connect(ctx context.Context, userID uuid.UUID) (*Session, error) {
	log := logger.WithContext(ctx).WithField("user_id", userID.String())

	account, err := c.accounts.GetByUserAndProvider(ctx, userID, domain.ProviderGoogle)
	if errors.Is(err, out.ErrAccountNotFound) {
		log.Info("No calendar account stored")
		return nil, domain.ErrNotConnected
	}
	if err != nil {
		return nil, apperr.UpstreamFailure("account store", err)
	}
	if account == nil || (account.AccessToken == "" && account.RefreshToken == "") {
		log.Info("Calendar account has no tokens")
		return nil, domain.ErrNotConnected
	}
	log.Debug("Calendar tokens retrieved")

	return &Session{
		UserID:   userID,
		token:    c.tokenFor(account),
		provider: c.provider,
	}, nil
}

// tokenFor converts a stored grant. The store keeps no expiry, so when a
// refresh token exists the access token is treated as expired and the
// oauth2 transport refreshes it for this request only. The refreshed token
// is never written back.
func (c *Connector) tokenFor(account *domain.UserCalendarAccount) *oauth2.Token {
	token := &oauth2.Token{
		AccessToken:  account.AccessToken,
		RefreshToken: account.RefreshToken,
		TokenType:    "Bearer",
	}
	if account.RefreshToken != "" {
		token.Expiry = c.now().Add(-time.Minute)
	}
	return token
}

// Session is an authorized calendar client for one user.
type Session struct {
	UserID   uuid.UUID
	token    *oauth2.Token
	provider out.CalendarProviderPort
}

func (s *Session) ListEvents(ctx context.Context, query domain.EventQuery) ([]*domain.CalendarEvent, error) {
	if query.CalendarID == "" {
		query.CalendarID = domain.PrimaryCalendarID
	}
	events, err := s.provider.ListEvents(ctx, s.token, query)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (s *Session) CreateEvent(ctx context.Context, details *domain.MeetingDetails) (*domain.CalendarEvent, error) {
	event, err := s.provider.CreateEvent(ctx, s.token, domain.PrimaryCalendarID, details)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}
