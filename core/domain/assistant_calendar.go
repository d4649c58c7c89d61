package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ProviderGoogle is the provider name calendar accounts are stored under.
const ProviderGoogle = "google"

// PrimaryCalendarID addresses the user's default calendar.
const PrimaryCalendarID = "primary"

// ErrNotConnected means the user has no stored calendar credentials.
var ErrNotConnected = errors.New("calendar not connected")

// UserCalendarAccount is the stored OAuth grant for one user and provider.
// The core only reads it.
type UserCalendarAccount struct {
	UserID       uuid.UUID `json:"user_id"`
	Provider     string    `json:"provider"`
	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
}

// CalendarEvent is the provider's view of a scheduled event.
type CalendarEvent struct {
	ID          string
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	AllDay      bool
	HTMLLink    string
}

// EventQuery bounds a calendar listing.
type EventQuery struct {
	CalendarID string
	TimeMin    time.Time
	TimeMax    time.Time
	MaxResults int
}
