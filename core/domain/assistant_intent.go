package domain

import "strings"

// Intent is the classified purpose of a calendar prompt.
type Intent string

const (
	IntentRead         Intent = "READ"
	IntentWrite        Intent = "WRITE"
	IntentUnrecognized Intent = "UNRECOGNIZED"
)

// ParseIntent normalizes a classifier answer. Anything other than a bare
// READ or WRITE is UNRECOGNIZED.
func ParseIntent(answer string) Intent {
	switch Intent(strings.ToUpper(strings.TrimSpace(answer))) {
	case IntentRead:
		return IntentRead
	case IntentWrite:
		return IntentWrite
	default:
		return IntentUnrecognized
	}
}

// Route names the path a prompt took through the router.
type Route string

const (
	RouteGeneral              Route = "general"
	RouteCalendarRead         Route = "calendar.read"
	RouteCalendarWrite        Route = "calendar.write"
	RouteCalendarUnrecognized Route = "calendar.unrecognized"
	RouteCalendarNotConnected Route = "calendar.not_connected"
)

// AgentResponse is the uniform result every agent hands back to the router.
type AgentResponse struct {
	Text  string `json:"response"`
	Route Route  `json:"-"`
}
