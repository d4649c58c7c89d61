package agent

import (
	"context"
	"strings"

	"assistant_server/core/port/out"
	"assistant_server/pkg/logger"
)

const generalSystemPrompt = "You are a helpful executive assistant. Answer the user's request clearly and concisely."

// GeneralAgent answers anything that is not about the calendar.
type GeneralAgent struct {
	llm   out.LLMPort
	model string
}

func NewGeneralAgent(llm out.LLMPort, model string) *GeneralAgent {
	return &GeneralAgent{llm: llm, model: model}
}

func (a *GeneralAgent) Respond(ctx context.Context, prompt string) string {
	answer, err := a.llm.Complete(ctx, out.CompletionRequest{
		Model:        a.model,
		SystemPrompt: generalSystemPrompt,
		UserPrompt:   prompt,
	})
	if err != nil {
		logger.WithContext(ctx).WithError(err).WithField("agent", "general").Error("General completion failed")
		return MsgUpstreamFailure
	}
	if strings.TrimSpace(answer) == "" {
		return MsgGeneralFallback
	}
	return answer
}
