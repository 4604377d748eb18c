package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/skincare-api/internal/config"
	"github.com/phrazzld/skincare-api/internal/generation"
	"google.golang.org/genai"
)

// Generator implements generation.TextGenerator on top of the Gemini API.
type Generator struct {
	// logger is used for structured logging
	logger *slog.Logger

	// client is the Gemini API client for making requests
	client *genai.Client

	// model is the name of the Gemini model to use
	model string

	// timeout bounds a single call; zero means the caller's context decides
	timeout time.Duration
}

var _ generation.TextGenerator = (*Generator)(nil)

// NewGenerator creates a Generator from the LLM configuration.
//
// Parameters:
//   - ctx: Context for client construction
//   - logger: A structured logger for operation logging
//   - cfg: LLM configuration containing API key, model name and timeout
//   - opts: Optional client overrides
//
// Returns:
//   - A properly initialized Generator or an error wrapping generation.ErrInvalidConfig
func NewGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig, opts ...Option) (*Generator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	client, err := newClient(ctx, logger, cfg.GeminiAPIKey, cfg.ModelName, opts...)
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Gemini text generator initialized", "model", cfg.ModelName)

	return &Generator{
		logger:  logger,
		client:  client,
		model:   cfg.ModelName,
		timeout: cfg.RequestTimeout,
	}, nil
}

// GenerateText sends prompt to Gemini in a single attempt and returns the text
// of the first candidate.
func (g *Generator) GenerateText(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", generation.ErrEmptyPrompt
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	g.logger.DebugContext(ctx, "Making Gemini API call",
		"model", g.model,
		"prompt_length", len(prompt))

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		g.logger.ErrorContext(ctx, "Gemini API call failed",
			"model", g.model,
			"error", err)
		return "", fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
	}

	text, err := responseText(resp)
	if err != nil {
		g.logger.WarnContext(ctx, "Gemini returned an unusable response", "error", err)
		return "", err
	}

	g.logger.InfoContext(ctx, "Gemini API call successful",
		"model", g.model,
		"response_length", len(text),
		"duration_ms", time.Since(start).Milliseconds())

	return text, nil
}
