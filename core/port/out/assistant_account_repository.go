package out

import (
	"context"
	"errors"

	"assistant_server/core/domain"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// ErrAccountNotFound is returned when no account row exists.
var ErrAccountNotFound = errors.New("calendar account not found")

// AccountRepository reads stored calendar grants. The core never writes.
type AccountRepository interface {
	GetByUserAndProvider(ctx context.Context, userID uuid.UUID, provider string) (*domain.UserCalendarAccount, error)
}

// AccountWriter stores a grant obtained by the OAuth callback.
type AccountWriter interface {
	Upsert(ctx context.Context, userID uuid.UUID, provider string, token *oauth2.Token) error
}
