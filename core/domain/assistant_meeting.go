package domain

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// DefaultMeetingDuration applies when the prompt gives no duration.
const DefaultMeetingDuration = 30 * time.Minute

// ErrExtractionInvalid marks model output that cannot become a meeting.
var ErrExtractionInvalid = errors.New("meeting extraction invalid")

// MeetingDetails is the structured meeting extracted from a WRITE prompt.
type MeetingDetails struct {
	Summary     string
	Description string
	StartTime   time.Time
	EndTime     time.Time
}

// rawMeetingDetails mirrors the JSON object the model is asked to produce.
type rawMeetingDetails struct {
	Summary     *string `json:"summary"`
	Description *string `json:"description"`
	StartTime   *string `json:"startTime"`
	EndTime     *string `json:"endTime"`
}

var meetingTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseMeetingDetails decodes and validates model output. Times without an
// offset are read in loc. Any failure wraps ErrExtractionInvalid.
func ParseMeetingDetails(raw string, loc *time.Location) (*MeetingDetails, error) {
	if loc == nil {
		loc = time.UTC
	}

	body := bytes.TrimSpace([]byte(stripCodeFence(raw)))
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty output", ErrExtractionInvalid)
	}

	var r rawMeetingDetails
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionInvalid, err)
	}

	if r.Summary == nil || strings.TrimSpace(*r.Summary) == "" {
		return nil, fmt.Errorf("%w: missing summary", ErrExtractionInvalid)
	}
	if r.StartTime == nil || strings.TrimSpace(*r.StartTime) == "" {
		return nil, fmt.Errorf("%w: missing startTime", ErrExtractionInvalid)
	}
	if r.EndTime == nil || strings.TrimSpace(*r.EndTime) == "" {
		return nil, fmt.Errorf("%w: missing endTime", ErrExtractionInvalid)
	}

	start, err := parseMeetingTime(*r.StartTime, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: startTime: %v", ErrExtractionInvalid, err)
	}
	end, err := parseMeetingTime(*r.EndTime, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: endTime: %v", ErrExtractionInvalid, err)
	}
	if !end.After(start) {
		return nil, fmt.Errorf("%w: endTime must be after startTime", ErrExtractionInvalid)
	}

	details := &MeetingDetails{
		Summary:   strings.TrimSpace(*r.Summary),
		StartTime: start,
		EndTime:   end,
	}
	if r.Description != nil {
		details.Description = strings.TrimSpace(*r.Description)
	}
	return details, nil
}

func parseMeetingTime(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range meetingTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", value)
}

// stripCodeFence removes a ```json fence some models wrap around output.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
