// Package out defines outbound ports (driven ports) for the application.
package out

import "context"

// CompletionRequest is a single system + user chat completion.
type CompletionRequest struct {
	Model        string
	SystemPrompt string
	UserPrompt   string
	// JSON asks the provider for a strict JSON object response.
	JSON bool
}

// LLMPort is the outbound port for the language-model provider.
type LLMPort interface {
	// Complete returns the first choice's content, or "" when the provider
	// returns no choices.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
