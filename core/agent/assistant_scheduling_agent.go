package agent

import (
	"context"
	"fmt"
	"time"

	"assistant_server/core/domain"
	"assistant_server/core/port/out"
	"assistant_server/pkg/apperr"
	"assistant_server/pkg/logger"
)

// EventCreator is the calendar capability the WRITE path needs.
type EventCreator interface {
	CreateEvent(ctx context.Context, details *domain.MeetingDetails) (*domain.CalendarEvent, error)
}

// SchedulingAgent extracts meeting details from a prompt and books them.
type SchedulingAgent struct {
	llm   out.LLMPort
	model string
	loc   *time.Location
	now   func() time.Time
}

func NewSchedulingAgent(llm out.LLMPort, model string, loc *time.Location) *SchedulingAgent {
	if loc == nil {
		loc = time.UTC
	}
	return &SchedulingAgent{
		llm:   llm,
		model: model,
		loc:   loc,
		now:   time.Now,
	}
}

func (a *SchedulingAgent) systemPrompt() string {
	return fmt.Sprintf(`Parse the user's prompt into a JSON object with keys: "summary", "description", "startTime", "endTime".
Assume the current date and time is %s.
Write startTime and endTime as ISO 8601 timestamps with a UTC offset.
The meeting should be %d minutes if no duration is specified.
Respond with only the JSON object.`,
		a.now().In(a.loc).Format(time.RFC3339), int(domain.DefaultMeetingDuration.Minutes()))
}

// Schedule makes one JSON extraction call and, if the result validates,
// exactly one event creation call. Every failure becomes a reply string.
func (a *SchedulingAgent) Schedule(ctx context.Context, prompt string, cal EventCreator) string {
	log := logger.WithContext(ctx).WithField("agent", "scheduling")

	raw, err := a.llm.Complete(ctx, out.CompletionRequest{
		Model:        a.model,
		SystemPrompt: a.systemPrompt(),
		UserPrompt:   prompt,
		JSON:         true,
	})
	if err != nil {
		log.WithError(err).Error("Meeting extraction failed")
		return MsgUpstreamFailure
	}

	details, err := domain.ParseMeetingDetails(raw, a.loc)
	if err != nil {
		log.WithError(err).WithFields(map[string]any{
			"error_code": apperr.CodeExtractionInvalid,
			"raw_output": raw,
		}).Warn("Meeting details rejected")
		return MsgClarifyMeeting
	}
	log.WithFields(map[string]any{
		"summary":    details.Summary,
		"start_time": details.StartTime.Format(time.RFC3339),
		"end_time":   details.EndTime.Format(time.RFC3339),
	}).Info("Meeting details parsed")

	event, err := cal.CreateEvent(ctx, details)
	if err != nil {
		log.WithError(err).Error("Calendar event creation failed")
		return MsgCalendarUnavailable
	}
	log.WithField("event_id", event.ID).Info("Calendar event created")

	summary := event.Summary
	if summary == "" {
		summary = details.Summary
	}
	return fmt.Sprintf("✅ Meeting scheduled! I've added \"%s\" to your calendar. View it here: %s", summary, event.HTMLLink)
}
