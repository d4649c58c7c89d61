// Package in defines inbound ports (driving ports) for the application.
package in

import (
	"context"

	"assistant_server/core/domain"
)

// PromptRouter handles one natural-language prompt end to end.
type PromptRouter interface {
	Route(ctx context.Context, prompt string) (*domain.AgentResponse, error)
}
