package out

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SMSSender sends a text message through the telephony provider.
type SMSSender interface {
	SendSMS(ctx context.Context, from, to, body string) error
}

// OAuthStateStore keeps OAuth state values for CSRF protection.
type OAuthStateStore interface {
	StoreState(ctx context.Context, state string, userID uuid.UUID, ttl time.Duration) error
	// ValidateState returns the stored user and deletes the state.
	ValidateState(ctx context.Context, state string) (uuid.UUID, error)
}
