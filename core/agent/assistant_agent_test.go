package agent

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"assistant_server/core/domain"
	"assistant_server/core/port/out"
	"assistant_server/core/service/calendar"
	"assistant_server/pkg/apperr"
	"assistant_server/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const (
	testIntentModel  = "intent-model"
	testExtractModel = "extract-model"
	testGeneralModel = "general-model"
)

// scriptedLLM answers per model and records every request.
type scriptedLLM struct {
	mu       sync.Mutex
	answers  map[string]string
	errs     map[string]error
	requests []out.CompletionRequest
}

func (s *scriptedLLM) Complete(_ context.Context, req out.CompletionRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if err := s.errs[req.Model]; err != nil {
		return "", err
	}
	return s.answers[req.Model], nil
}

func (s *scriptedLLM) callsFor(model string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if r.Model == model {
			n++
		}
	}
	return n
}

type stubAccounts struct {
	account *domain.UserCalendarAccount
	err     error
	calls   int
}

func (s *stubAccounts) GetByUserAndProvider(_ context.Context, _ uuid.UUID, _ string) (*domain.UserCalendarAccount, error) {
	s.calls++
	return s.account, s.err
}

type countingProvider struct {
	events    []*domain.CalendarEvent
	listErr   error
	createErr error
	lists     []domain.EventQuery
	created   []*domain.MeetingDetails
}

func (p *countingProvider) ListEvents(_ context.Context, _ *oauth2.Token, q domain.EventQuery) ([]*domain.CalendarEvent, error) {
	p.lists = append(p.lists, q)
	if p.listErr != nil {
		return nil, p.listErr
	}
	return p.events, nil
}

func (p *countingProvider) CreateEvent(_ context.Context, _ *oauth2.Token, _ string, d *domain.MeetingDetails) (*domain.CalendarEvent, error) {
	p.created = append(p.created, d)
	if p.createErr != nil {
		return nil, p.createErr
	}
	return &domain.CalendarEvent{
		ID:       "evt1",
		Summary:  d.Summary,
		Start:    d.StartTime,
		End:      d.EndTime,
		HTMLLink: "https://www.google.com/calendar/event?eid=evt1",
	}, nil
}

type harness struct {
	llm      *scriptedLLM
	accounts *stubAccounts
	provider *countingProvider
	router   *Router
	now      time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		llm: &scriptedLLM{answers: map[string]string{}, errs: map[string]error{}},
		accounts: &stubAccounts{account: &domain.UserCalendarAccount{
			Provider:     domain.ProviderGoogle,
			AccessToken:  "access",
			RefreshToken: "refresh",
		}},
		provider: &countingProvider{},
		now:      time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC),
	}

	scheduler := NewSchedulingAgent(h.llm, testExtractModel, time.UTC)
	scheduler.now = func() time.Time { return h.now }
	lookup := NewLookupAgent(7, 20)
	lookup.now = func() time.Time { return h.now }

	h.router = NewRouter(RouterConfig{
		DefaultUserID: uuid.New(),
		Connector:     calendar.NewConnector(h.accounts, h.provider),
		Classifier:    NewClassifier(h.llm, testIntentModel),
		Scheduler:     scheduler,
		Lookup:        lookup,
		General:       NewGeneralAgent(h.llm, testGeneralModel),
	})
	return h
}

func TestIsCalendarPrompt(t *testing.T) {
	tests := []struct {
		prompt string
		want   bool
	}{
		{"what's on my calendar today", true},
		{"Schedule a MEETING with Jane", true},
		{"I rescheduled my dentist", true},
		{"book an Appointment", true},
		{"tell me a joke", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.prompt, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCalendarPrompt(tt.prompt, DefaultCalendarKeywords))
		})
	}
}

func TestRouteRejectsEmptyPrompt(t *testing.T) {
	h := newHarness(t)

	for _, prompt := range []string{"", "   \n"} {
		resp, err := h.router.Route(context.Background(), prompt)
		assert.Nil(t, resp)
		require.Error(t, err)
		assert.True(t, apperr.AsAppError(err).IsClientError())
	}
	assert.Empty(t, h.llm.requests)
	assert.Zero(t, h.accounts.calls)
}

func TestRouteGeneralNeverTouchesCalendar(t *testing.T) {
	h := newHarness(t)
	h.llm.answers[testGeneralModel] = "Why did the chicken cross the road?"

	resp, err := h.router.Route(context.Background(), "tell me a joke")
	require.NoError(t, err)

	assert.Equal(t, "Why did the chicken cross the road?", resp.Text)
	assert.Equal(t, domain.RouteGeneral, resp.Route)
	assert.Zero(t, h.accounts.calls)
	assert.Zero(t, h.llm.callsFor(testIntentModel))
	assert.Empty(t, h.provider.lists)
	assert.Empty(t, h.provider.created)
}

func TestRouteGeneralFallbacks(t *testing.T) {
	h := newHarness(t)

	resp, err := h.router.Route(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, MsgGeneralFallback, resp.Text)

	h.llm.errs[testGeneralModel] = errors.New("rate limited")
	resp, err = h.router.Route(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, MsgUpstreamFailure, resp.Text)
	assert.NotContains(t, resp.Text, "rate limited")
}

func TestRouteNotConnectedSkipsModel(t *testing.T) {
	h := newHarness(t)
	h.accounts.account = nil
	h.accounts.err = out.ErrAccountNotFound

	resp, err := h.router.Route(context.Background(), "what's on my calendar today")
	require.NoError(t, err)

	assert.Equal(t, MsgNotConnected, resp.Text)
	assert.Equal(t, domain.RouteCalendarNotConnected, resp.Route)
	assert.Empty(t, h.llm.requests)
	assert.Empty(t, h.provider.lists)
}

func TestRouteAccountStoreFailureIsSoft(t *testing.T) {
	h := newHarness(t)
	h.accounts.err = errors.New("dial tcp: connection refused")

	resp, err := h.router.Route(context.Background(), "schedule something")
	require.NoError(t, err)

	assert.Equal(t, MsgCalendarUnavailable, resp.Text)
	assert.NotContains(t, resp.Text, "connection refused")
	assert.Empty(t, h.llm.requests)
}

func TestRouteUnrecognizedIntent(t *testing.T) {
	h := newHarness(t)
	h.llm.answers[testIntentModel] = "MAYBE"

	resp, err := h.router.Route(context.Background(), "calendar stuff")
	require.NoError(t, err)

	assert.Equal(t, MsgClarifyIntent, resp.Text)
	assert.Equal(t, domain.RouteCalendarUnrecognized, resp.Route)
	assert.Empty(t, h.provider.lists)
	assert.Empty(t, h.provider.created)
	assert.Zero(t, h.llm.callsFor(testExtractModel))
}

func TestRouteClassifierFailure(t *testing.T) {
	h := newHarness(t)
	h.llm.errs[testIntentModel] = errors.New("timeout")

	resp, err := h.router.Route(context.Background(), "calendar stuff")
	require.NoError(t, err)
	assert.Equal(t, MsgUpstreamFailure, resp.Text)
	assert.Equal(t, 1, h.llm.callsFor(testIntentModel))
}

func TestRouteReadEmptyWindow(t *testing.T) {
	h := newHarness(t)
	h.llm.answers[testIntentModel] = " read\n"

	resp, err := h.router.Route(context.Background(), "what's on my calendar today")
	require.NoError(t, err)

	assert.Equal(t, "No upcoming events in the next 7 days.", resp.Text)
	assert.Equal(t, domain.RouteCalendarRead, resp.Route)
	require.Len(t, h.provider.lists, 1)
	q := h.provider.lists[0]
	assert.Equal(t, domain.PrimaryCalendarID, q.CalendarID)
	assert.Equal(t, 20, q.MaxResults)
	assert.Equal(t, h.now, q.TimeMin)
	assert.Equal(t, h.now.AddDate(0, 0, 7), q.TimeMax)
	assert.Empty(t, h.provider.created)
}

func TestRouteReadListsEventsInOrder(t *testing.T) {
	h := newHarness(t)
	h.llm.answers[testIntentModel] = "READ"
	h.provider.events = []*domain.CalendarEvent{
		{Summary: "Standup", Start: time.Date(2026, 10, 20, 15, 30, 0, 0, time.UTC)},
		{Summary: "Offsite", Start: time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), AllDay: true},
		{Summary: "", Start: time.Date(2026, 10, 21, 9, 0, 0, 0, time.UTC)},
	}

	resp, err := h.router.Route(context.Background(), "show my calendar")
	require.NoError(t, err)

	lines := strings.Split(resp.Text, "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Here are your upcoming events for the next 7 days:", lines[0])
	assert.Equal(t, "- Offsite (on Mon, Oct 19, 2026)", lines[1])
	assert.Equal(t, "- Standup (on Tue, Oct 20, 2026 at 3:30 PM)", lines[2])
	assert.Equal(t, "- (no title) (on Wed, Oct 21, 2026 at 9:00 AM)", lines[3])
}

func TestRouteReadProviderFailure(t *testing.T) {
	h := newHarness(t)
	h.llm.answers[testIntentModel] = "READ"
	h.provider.listErr = errors.New("googleapi: Error 401: invalid_grant")

	resp, err := h.router.Route(context.Background(), "what's on my calendar")
	require.NoError(t, err)

	assert.Equal(t, MsgCalendarUnavailable, resp.Text)
	assert.NotContains(t, resp.Text, "invalid_grant")
}

func TestRouteWriteCreatesOneEvent(t *testing.T) {
	h := newHarness(t)
	h.llm.answers[testIntentModel] = "WRITE"
	h.llm.answers[testExtractModel] = `{"summary":"Meeting with Jane","description":"","startTime":"2026-10-19T15:00:00Z","endTime":"2026-10-19T15:30:00Z"}`

	resp, err := h.router.Route(context.Background(), "schedule a meeting with Jane tomorrow at 3pm")
	require.NoError(t, err)

	assert.Equal(t, domain.RouteCalendarWrite, resp.Route)
	require.Len(t, h.provider.created, 1)
	created := h.provider.created[0]
	assert.Equal(t, "Meeting with Jane", created.Summary)
	assert.Equal(t, 30*time.Minute, created.EndTime.Sub(created.StartTime))
	assert.Contains(t, resp.Text, "Meeting with Jane")
	assert.Contains(t, resp.Text, "https://www.google.com/calendar/event?eid=evt1")
	assert.Empty(t, h.provider.lists)

	var extract out.CompletionRequest
	for _, r := range h.llm.requests {
		if r.Model == testExtractModel {
			extract = r
		}
	}
	assert.True(t, extract.JSON)
	assert.Contains(t, extract.SystemPrompt, "2026-10-18T09:00:00Z")
	assert.Contains(t, extract.SystemPrompt, "30 minutes")
}

func TestRouteWriteInvalidExtraction(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "sure, tomorrow at 3"},
		{"missing summary", `{"startTime":"2026-10-19T15:00:00Z","endTime":"2026-10-19T15:30:00Z"}`},
		{"bad time", `{"summary":"x","startTime":"tomorrow","endTime":"2026-10-19T15:30:00Z"}`},
		{"end before start", `{"summary":"x","startTime":"2026-10-19T15:00:00Z","endTime":"2026-10-19T14:00:00Z"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.llm.answers[testIntentModel] = "WRITE"
			h.llm.answers[testExtractModel] = tt.raw

			resp, err := h.router.Route(context.Background(), "schedule a meeting")
			require.NoError(t, err)

			assert.Equal(t, MsgClarifyMeeting, resp.Text)
			assert.Empty(t, h.provider.created)
		})
	}
}

func TestRouteWriteCreateFailure(t *testing.T) {
	h := newHarness(t)
	h.llm.answers[testIntentModel] = "WRITE"
	h.llm.answers[testExtractModel] = `{"summary":"Sync","startTime":"2026-10-19T15:00:00Z","endTime":"2026-10-19T15:30:00Z"}`
	h.provider.createErr = errors.New("googleapi: Error 403: insufficientPermissions")

	resp, err := h.router.Route(context.Background(), "schedule a sync")
	require.NoError(t, err)

	assert.Equal(t, MsgCalendarUnavailable, resp.Text)
	assert.Len(t, h.provider.created, 1)
	assert.NotContains(t, resp.Text, "insufficientPermissions")
}

type latencySink struct {
	routes []string
}

func (l *latencySink) Record(route string, _ time.Duration) {
	l.routes = append(l.routes, route)
}

func TestRouteRecordsLatency(t *testing.T) {
	h := newHarness(t)
	sink := &latencySink{}
	h.router.latency = sink
	h.llm.answers[testGeneralModel] = "hi"

	_, err := h.router.Route(context.Background(), "hello")
	require.NoError(t, err)

	assert.Equal(t, []string{string(domain.RouteGeneral)}, sink.routes)
}

func TestLookupCapsResults(t *testing.T) {
	a := NewLookupAgent(7, 2)
	base := time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)
	text := a.render([]*domain.CalendarEvent{
		{Summary: "c", Start: base.Add(2 * time.Hour)},
		{Summary: "a", Start: base},
		{Summary: "b", Start: base.Add(time.Hour)},
	})

	lines := strings.Split(text, "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "- a "))
	assert.True(t, strings.HasPrefix(lines[2], "- b "))
}

func TestNewLookupAgentDefaults(t *testing.T) {
	a := NewLookupAgent(0, -1)
	assert.Equal(t, DefaultLookupWindowDays, a.windowDays)
	assert.Equal(t, DefaultLookupMaxResults, a.maxResults)
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logger.Init(logger.Config{Level: logger.LevelDebug, Output: &buf})
	t.Cleanup(func() { logger.Init(logger.Config{Level: logger.LevelInfo}) })
	return &buf
}

func TestRouteLogsSoftFailureCodes(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(h *harness)
		prompt string
		code   string
	}{
		{
			name:   "not connected",
			setup:  func(h *harness) { h.accounts.err = out.ErrAccountNotFound },
			prompt: "what's on my calendar",
			code:   apperr.CodeNotConnected,
		},
		{
			name:   "ambiguous intent",
			setup:  func(h *harness) { h.llm.answers[testIntentModel] = "MAYBE" },
			prompt: "calendar stuff",
			code:   apperr.CodeClassificationAmbiguous,
		},
		{
			name: "invalid extraction",
			setup: func(h *harness) {
				h.llm.answers[testIntentModel] = "WRITE"
				h.llm.answers[testExtractModel] = "sure, tomorrow"
			},
			prompt: "schedule a meeting",
			code:   apperr.CodeExtractionInvalid,
		},
		{
			name:   "account store down",
			setup:  func(h *harness) { h.accounts.err = errors.New("connection refused") },
			prompt: "what's on my calendar",
			code:   apperr.CodeUpstreamFailure,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLogs(t)
			h := newHarness(t)
			tt.setup(h)

			_, err := h.router.Route(context.Background(), tt.prompt)
			require.NoError(t, err)

			assert.Contains(t, buf.String(), `"error_code":"`+tt.code+`"`)
		})
	}
}

func TestRouteWriteKeepsTitleUnescaped(t *testing.T) {
	h := newHarness(t)
	h.llm.answers[testIntentModel] = "WRITE"
	h.llm.answers[testExtractModel] = `{"summary":"Sync \"Q4\" w/ José","startTime":"2026-10-19T15:00:00Z","endTime":"2026-10-19T15:30:00Z"}`

	resp, err := h.router.Route(context.Background(), "schedule the Q4 sync")
	require.NoError(t, err)

	assert.Contains(t, resp.Text, `I've added "Sync "Q4" w/ José" to your calendar`)
	assert.NotContains(t, resp.Text, `\"`)
}

func TestLookupOnlyNilEventsIsEmpty(t *testing.T) {
	a := NewLookupAgent(7, 20)
	assert.Equal(t, "No upcoming events in the next 7 days.", a.render([]*domain.CalendarEvent{nil, nil}))
}
