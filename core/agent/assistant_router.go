// Package agent routes prompts to the calendar or general assistant.
package agent

import (
	"context"
	"errors"
	"strings"
	"time"

	"assistant_server/core/domain"
	"assistant_server/core/port/in"
	"assistant_server/core/service/calendar"
	"assistant_server/pkg/apperr"
	"assistant_server/pkg/logger"

	"github.com/google/uuid"
)

// DefaultCalendarKeywords trigger the calendar path.
var DefaultCalendarKeywords = []string{"calendar", "meeting", "schedule", "appointment"}

// IsCalendarPrompt reports whether any keyword occurs in the prompt,
// ignoring case. Substrings count: "rescheduled" matches "schedule".
func IsCalendarPrompt(prompt string, keywords []string) bool {
	lower := strings.ToLower(prompt)
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// SessionOpener resolves a user into an authorized calendar session.
type SessionOpener interface {
	Connect(ctx context.Context, userID uuid.UUID) (*calendar.Session, error)
}

// LatencyRecorder receives one sample per routed prompt.
type LatencyRecorder interface {
	Record(route string, d time.Duration)
}

type RouterConfig struct {
	Keywords      []string
	DefaultUserID uuid.UUID
	Connector     SessionOpener
	Classifier    *Classifier
	Scheduler     *SchedulingAgent
	Lookup        *LookupAgent
	General       *GeneralAgent
	Latency       LatencyRecorder
}

// Router is the single entry point for prompts.
type Router struct {
	keywords  []string
	userID    uuid.UUID
	connector SessionOpener
	classify  *Classifier
	scheduler *SchedulingAgent
	lookup    *LookupAgent
	general   *GeneralAgent
	latency   LatencyRecorder
}

var _ in.PromptRouter = (*Router)(nil)

func NewRouter(cfg RouterConfig) *Router {
	keywords := cfg.Keywords
	if len(keywords) == 0 {
		keywords = DefaultCalendarKeywords
	}
	return &Router{
		keywords:  keywords,
		userID:    cfg.DefaultUserID,
		connector: cfg.Connector,
		classify:  cfg.Classifier,
		scheduler: cfg.Scheduler,
		lookup:    cfg.Lookup,
		general:   cfg.General,
		latency:   cfg.Latency,
	}
}

// Route dispatches one prompt. Upstream failures are folded into the reply
// text; an error is returned only for invalid input.
func (r *Router) Route(ctx context.Context, prompt string) (*domain.AgentResponse, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, apperr.InvalidInput("prompt", "Prompt is required")
	}

	start := time.Now()
	resp := r.dispatch(ctx, prompt)
	if r.latency != nil {
		r.latency.Record(string(resp.Route), time.Since(start))
	}
	logger.WithContext(ctx).
		WithField("route", string(resp.Route)).
		WithDuration(time.Since(start)).
		Info("Prompt routed")
	return resp, nil
}

func (r *Router) dispatch(ctx context.Context, prompt string) *domain.AgentResponse {
	if !IsCalendarPrompt(prompt, r.keywords) {
		return &domain.AgentResponse{Text: r.general.Respond(ctx, prompt), Route: domain.RouteGeneral}
	}

	ctx = logger.ContextWithUserID(ctx, r.userID.String())
	log := logger.WithContext(ctx)

	// Credentials come first so a disconnected user costs no model call.
	session, err := r.connector.Connect(ctx, r.userID)
	if errors.Is(err, domain.ErrNotConnected) {
		log.WithField("error_code", apperr.CodeNotConnected).Info("Calendar not connected")
		return &domain.AgentResponse{Text: MsgNotConnected, Route: domain.RouteCalendarNotConnected}
	}
	if err != nil {
		log.WithError(err).WithField("error_code", apperr.CodeOf(err)).Error("Calendar connection failed")
		return &domain.AgentResponse{Text: MsgCalendarUnavailable, Route: domain.RouteCalendarUnrecognized}
	}

	intent, err := r.classify.Classify(ctx, prompt)
	if err != nil {
		log.WithError(err).Error("Intent classification failed")
		return &domain.AgentResponse{Text: MsgUpstreamFailure, Route: domain.RouteCalendarUnrecognized}
	}

	switch intent {
	case domain.IntentRead:
		return &domain.AgentResponse{Text: r.lookup.Lookup(ctx, session), Route: domain.RouteCalendarRead}
	case domain.IntentWrite:
		return &domain.AgentResponse{Text: r.scheduler.Schedule(ctx, prompt, session), Route: domain.RouteCalendarWrite}
	default:
		log.WithField("error_code", apperr.CodeClassificationAmbiguous).Warn("Calendar intent unrecognized")
		return &domain.AgentResponse{Text: MsgClarifyIntent, Route: domain.RouteCalendarUnrecognized}
	}
}
