package completion

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OpenAIOptions configures an OpenAI-compatible chat completions client.
type OpenAIOptions struct {
	APIKey  string
	BaseURL string        // optional; empty uses the public API
	Timeout time.Duration // per call; <= 0 means 30s
}

// OpenAIClient implements Client on top of the chat completions API with
// JSON-object response format.
type OpenAIClient struct {
	api *openai.Client
}

// NewOpenAI returns a Client for opts. Without an API key it returns
// Disabled so callers degrade to their fallback path.
func NewOpenAI(opts OpenAIOptions) Client {
	if strings.TrimSpace(opts.APIKey) == "" {
		return Disabled{}
	}
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	return &OpenAIClient{api: openai.NewClientWithConfig(cfg)}
}

// Complete implements Client.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	ctx, span := otel.Tracer("completion/OpenAIClient").Start(ctx, "Complete",
		trace.WithAttributes(
			attribute.String("llm.model", req.Model),
			attribute.Int("llm.messages", len(req.Messages)),
			attribute.Int("llm.max_tokens", req.MaxTokens),
		),
	)
	defer span.End()

	msgs := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: toOpenAIRole(m.Role), Content: m.Content})
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    msgs,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "chat completion failed")
		return "", fmt.Errorf("chat completion: %w", err)
	}

	span.SetAttributes(
		attribute.Int("llm.prompt_tokens", resp.Usage.PromptTokens),
		attribute.Int("llm.completion_tokens", resp.Usage.CompletionTokens),
	)
	zerolog.Ctx(ctx).Debug().
		Str("model", resp.Model).
		Int("prompt_tokens", resp.Usage.PromptTokens).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Msg("chat completion")

	// no choices or no content reads as an empty object, which then fails
	// validation like any other unusable reply
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		span.AddEvent("empty completion")
		return "{}", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func toOpenAIRole(r Role) string {
	switch r {
	case RoleSystem:
		return openai.ChatMessageRoleSystem
	default:
		return openai.ChatMessageRoleUser
	}
}
