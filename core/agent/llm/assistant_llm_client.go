package llm

import (
	"context"
	"fmt"
	"time"

	"assistant_server/core/port/out"
	"assistant_server/pkg/httputil"
	"assistant_server/pkg/logger"

	openai "github.com/sashabaranov/go-openai"
)

const DefaultModel = "gpt-4o-mini"

// chatCompleter is the slice of the go-openai client this package uses.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client implements out.LLMPort on the OpenAI chat completions API.
type Client struct {
	client chatCompleter
	model  string
}

type ClientConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

var _ out.LLMPort = (*Client)(nil)

func NewClientWithConfig(cfg ClientConfig) *Client {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	oc.HTTPClient = httputil.OpenAIClient()
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	return &Client{
		client: openai.NewClientWithConfig(oc),
		model:  model,
	}
}

// Complete sends one system + user completion. JSON requests use the
// json_object response format.
func (c *Client) Complete(ctx context.Context, req out.CompletionRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.UserPrompt,
	})

	chatReq := openai.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
	}
	if req.JSON {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", fmt.Errorf("openai chat completion (%s): %w", model, err)
	}
	logger.WithContext(ctx).
		WithDuration(time.Since(start)).
		WithField("model", model).
		WithField("total_tokens", resp.Usage.TotalTokens).
		Debug("LLM completion finished")

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
