package agent

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"assistant_server/core/domain"
	"assistant_server/pkg/logger"
)

const (
	DefaultLookupWindowDays = 7
	DefaultLookupMaxResults = 20

	allDayLayout = "Mon, Jan 2, 2006"
	timedLayout  = "Mon, Jan 2, 2006 at 3:04 PM"
)

// EventLister is the calendar capability the READ path needs.
type EventLister interface {
	ListEvents(ctx context.Context, query domain.EventQuery) ([]*domain.CalendarEvent, error)
}

// LookupAgent summarizes the upcoming events in a fixed window.
type LookupAgent struct {
	windowDays int
	maxResults int
	now        func() time.Time
}

func NewLookupAgent(windowDays, maxResults int) *LookupAgent {
	if windowDays <= 0 {
		windowDays = DefaultLookupWindowDays
	}
	if maxResults <= 0 {
		maxResults = DefaultLookupMaxResults
	}
	return &LookupAgent{
		windowDays: windowDays,
		maxResults: maxResults,
		now:        time.Now,
	}
}

// Lookup makes exactly one list call over [now, now+window).
func (a *LookupAgent) Lookup(ctx context.Context, cal EventLister) string {
	log := logger.WithContext(ctx).WithField("agent", "lookup")

	now := a.now()
	events, err := cal.ListEvents(ctx, domain.EventQuery{
		TimeMin:    now,
		TimeMax:    now.AddDate(0, 0, a.windowDays),
		MaxResults: a.maxResults,
	})
	if err != nil {
		log.WithError(err).Error("Calendar listing failed")
		return MsgCalendarUnavailable
	}
	log.WithField("count", len(events)).Info("Calendar events listed")

	return a.render(events)
}

func (a *LookupAgent) render(events []*domain.CalendarEvent) string {
	sorted := make([]*domain.CalendarEvent, 0, len(events))
	for _, e := range events {
		if e != nil {
			sorted = append(sorted, e)
		}
	}
	if len(sorted) == 0 {
		return fmt.Sprintf("No upcoming events in the next %d days.", a.windowDays)
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})
	if len(sorted) > a.maxResults {
		sorted = sorted[:a.maxResults]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Here are your upcoming events for the next %d days:", a.windowDays)
	for _, e := range sorted {
		b.WriteString("\n")
		b.WriteString(eventLine(e))
	}
	return b.String()
}

func eventLine(e *domain.CalendarEvent) string {
	summary := strings.TrimSpace(e.Summary)
	if summary == "" {
		summary = "(no title)"
	}
	layout := timedLayout
	if e.AllDay {
		layout = allDayLayout
	}
	return fmt.Sprintf("- %s (on %s)", summary, e.Start.Format(layout))
}
