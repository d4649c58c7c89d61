package agent

import (
	"context"
	"fmt"

	"assistant_server/core/domain"
	"assistant_server/core/port/out"
	"assistant_server/pkg/logger"
)

const intentSystemPrompt = "Classify the user's intent. Respond with a single word: READ or WRITE."

// Classifier labels a calendar prompt READ or WRITE with one model call.
// The model is not deterministic; anything else comes back UNRECOGNIZED.
type Classifier struct {
	llm   out.LLMPort
	model string
}

func NewClassifier(llm out.LLMPort, model string) *Classifier {
	return &Classifier{llm: llm, model: model}
}

// Classify issues exactly one completion and never retries.
func (c *Classifier) Classify(ctx context.Context, prompt string) (domain.Intent, error) {
	answer, err := c.llm.Complete(ctx, out.CompletionRequest{
		Model:        c.model,
		SystemPrompt: intentSystemPrompt,
		UserPrompt:   prompt,
	})
	if err != nil {
		return domain.IntentUnrecognized, fmt.Errorf("classify intent: %w", err)
	}

	intent := domain.ParseIntent(answer)
	logger.WithContext(ctx).
		WithField("raw_answer", answer).
		Info("Intent classified as %s", intent)
	return intent, nil
}
