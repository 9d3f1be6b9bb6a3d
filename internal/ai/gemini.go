package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/MARK404654/Eather/internal/config"
)

// geminiClient implements the completion Client using the Google Gemini SDK.
type geminiClient struct {
	client      *genai.Client
	model       string
	temperature float32
	maxTokens   int32
	instruction string
	timeout     time.Duration
	logger      *slog.Logger
}

func newGeminiClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*geminiClient, error) {
	if cfg.AIToken == "" {
		return nil, errors.New("AI token is required for the gemini backend")
	}
	if strings.HasPrefix(cfg.AIModel, "llama-") || strings.HasPrefix(cfg.AIModel, "gpt-") {
		return nil, fmt.Errorf("model %q is not a Gemini model; set ai_model together with ai_backend", cfg.AIModel)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.AIToken,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &geminiClient{
		client:      client,
		model:       cfg.AIModel,
		temperature: cfg.AITemperature,
		maxTokens:   int32(cfg.AIMaxTokens),
		instruction: cfg.AIInstruction,
		timeout:     cfg.AITimeout,
		logger:      logger.With("component", "gemini_client"),
	}, nil
}

func (c *geminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	startTime := time.Now()
	temperature := c.temperature
	resp, err := c.client.Models.GenerateContent(ctx, c.model,
		[]*genai.Content{{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{{Text: prompt}},
		}},
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: c.instruction}}},
			Temperature:       &temperature,
			MaxOutputTokens:   c.maxTokens,
		})
	if err != nil {
		return "", classifyGeminiError(err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: response contained no candidates", ErrUpstream)
	}

	var builder strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Text == "" {
			continue
		}
		builder.WriteString(part.Text)
	}
	content := builder.String()
	if content == "" {
		return "", fmt.Errorf("%w: response contained empty content", ErrUpstream)
	}

	c.logger.DebugContext(ctx, "completion generated",
		"duration_ms", time.Since(startTime).Milliseconds())

	return content, nil
}

func classifyGeminiError(err error) error {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests {
			return fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
		return fmt.Errorf("%w: status %d: %v", ErrUpstream, apiErr.Code, err)
	}

	return fmt.Errorf("%w: %v", ErrTransport, err)
}
