package ai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MARK404654/Eather/internal/config"
)

// NewClient creates a completion Client for the configured backend.
// It acts as a factory, selecting either the Groq or Gemini implementation.
func NewClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Client, error) {
	logger.Info("initializing completion client", "backend", cfg.AIBackend, "model", cfg.AIModel)

	switch cfg.AIBackend {
	case "groq":
		return newGroqClient(cfg, logger)
	case "gemini":
		return newGeminiClient(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unknown AI backend specified: %s", cfg.AIBackend)
	}
}
