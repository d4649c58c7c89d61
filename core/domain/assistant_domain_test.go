package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIntent(t *testing.T) {
	tests := []struct {
		answer string
		want   Intent
	}{
		{"READ", IntentRead},
		{"  write\n", IntentWrite},
		{"Read", IntentRead},
		{"READ.", IntentUnrecognized},
		{"READ or WRITE", IntentUnrecognized},
		{"", IntentUnrecognized},
		{"DELETE", IntentUnrecognized},
	}
	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseIntent(tt.answer))
		})
	}
}

func TestParseMeetingDetailsValid(t *testing.T) {
	raw := `{"summary":"Meeting with Jane","description":"sync","startTime":"2026-10-19T15:00:00-04:00","endTime":"2026-10-19T15:30:00-04:00"}`

	details, err := ParseMeetingDetails(raw, time.UTC)
	require.NoError(t, err)

	assert.Equal(t, "Meeting with Jane", details.Summary)
	assert.Equal(t, "sync", details.Description)
	assert.Equal(t, 30*time.Minute, details.EndTime.Sub(details.StartTime))
	_, offset := details.StartTime.Zone()
	assert.Equal(t, -4*3600, offset)
}

func TestParseMeetingDetailsLocalTimesAndFence(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	raw := "```json\n{\"summary\":\"Standup\",\"startTime\":\"2026-10-19T09:00:00\",\"endTime\":\"2026-10-19T09:15\"}\n```"

	details, err := ParseMeetingDetails(raw, loc)
	require.NoError(t, err)

	assert.Equal(t, "Standup", details.Summary)
	assert.Empty(t, details.Description)
	assert.Equal(t, loc, details.StartTime.Location())
	assert.Equal(t, 15*time.Minute, details.EndTime.Sub(details.StartTime))
}

func TestParseMeetingDetailsInvalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"not json", "Sure! Here is your meeting."},
		{"missing summary", `{"startTime":"2026-10-19T15:00:00Z","endTime":"2026-10-19T15:30:00Z"}`},
		{"blank summary", `{"summary":"  ","startTime":"2026-10-19T15:00:00Z","endTime":"2026-10-19T15:30:00Z"}`},
		{"missing start", `{"summary":"x","endTime":"2026-10-19T15:30:00Z"}`},
		{"missing end", `{"summary":"x","startTime":"2026-10-19T15:00:00Z"}`},
		{"unparseable start", `{"summary":"x","startTime":"tomorrow 3pm","endTime":"2026-10-19T15:30:00Z"}`},
		{"end before start", `{"summary":"x","startTime":"2026-10-19T15:00:00Z","endTime":"2026-10-19T14:30:00Z"}`},
		{"wrong type", `{"summary":42,"startTime":"2026-10-19T15:00:00Z","endTime":"2026-10-19T15:30:00Z"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			details, err := ParseMeetingDetails(tt.raw, nil)
			assert.Nil(t, details)
			assert.True(t, errors.Is(err, ErrExtractionInvalid), "got %v", err)
		})
	}
}
