package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/MARK404654/Eather/internal/config"
)

// groqClient talks to Groq's OpenAI-compatible chat completion endpoint.
// Any other OpenAI-compatible service works by pointing AIBaseURL at it.
type groqClient struct {
	api         *openai.Client
	model       string
	temperature float32
	maxTokens   int
	instruction string
	timeout     time.Duration
	logger      *slog.Logger
}

func newGroqClient(cfg *config.Config, logger *slog.Logger) (*groqClient, error) {
	if cfg.AIToken == "" {
		return nil, errors.New("AI token is required for the groq backend")
	}

	apiCfg := openai.DefaultConfig(cfg.AIToken)
	apiCfg.BaseURL = cfg.AIBaseURL
	apiCfg.HTTPClient = &http.Client{Timeout: cfg.AITimeout}

	return &groqClient{
		api:         openai.NewClientWithConfig(apiCfg),
		model:       cfg.AIModel,
		temperature: cfg.AITemperature,
		maxTokens:   cfg.AIMaxTokens,
		instruction: cfg.AIInstruction,
		timeout:     cfg.AITimeout,
		logger:      logger.With("component", "groq_client"),
	}, nil
}

// Complete sends a two-message conversation (system instruction + user
// prompt) and returns the first choice's content.
func (c *groqClient) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	startTime := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: c.instruction},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", classifyOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: response contained no choices", ErrUpstream)
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("%w: response contained empty content", ErrUpstream)
	}

	c.logger.DebugContext(ctx, "completion generated",
		"duration_ms", time.Since(startTime).Milliseconds(),
		"completion_tokens", resp.Usage.CompletionTokens)

	return content, nil
}

// classifyOpenAIError maps go-openai errors onto the package's failure
// classes. API-level errors carry an HTTP status; everything else (timeouts,
// connection failures) never reached the upstream and counts as transport.
func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
		return fmt.Errorf("%w: status %d: %v", ErrUpstream, apiErr.HTTPStatusCode, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
		return fmt.Errorf("%w: status %d: %v", ErrUpstream, reqErr.HTTPStatusCode, err)
	}

	return fmt.Errorf("%w: %v", ErrTransport, err)
}
