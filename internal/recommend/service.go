package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"text/template"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/skincare-api/internal/generation"
	"github.com/phrazzld/skincare-api/internal/platform/metrics"
	"github.com/phrazzld/skincare-api/internal/redact"
)

// Service produces recommendations using a text generator.
type Service struct {
	generator generation.TextGenerator
	tmpl      *template.Template
	validate  *validator.Validate
	logger    *slog.Logger
}

// NewService creates a recommendation Service. A nil template selects the
// built-in prompt.
func NewService(generator generation.TextGenerator, tmpl *template.Template, logger *slog.Logger) (*Service, error) {
	if generator == nil {
		return nil, errors.New("generator cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if tmpl == nil {
		tmpl = DefaultTemplate()
	}

	return &Service{
		generator: generator,
		tmpl:      tmpl,
		validate:  validator.New(),
		logger:    logger.With("component", "recommend"),
	}, nil
}

// Recommend asks the generator for recommendations for condition, avoiding
// the given allergies. It makes a single attempt. Failures are reported in
// Result.Error.
func (s *Service) Recommend(ctx context.Context, condition string, allergies []string) Result {
	prompt, err := buildPrompt(s.tmpl, condition, allergies)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to build recommendation prompt", "error", err)
		metrics.Recommendations.WithLabelValues(metrics.OutcomeGenerationError).Inc()
		return errorResult(err.Error())
	}

	s.logger.InfoContext(ctx, "Getting recommendations",
		"condition", condition,
		"allergy_count", len(allergies))

	start := time.Now()
	text, err := s.generator.GenerateText(ctx, prompt)
	metrics.RecommendationLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		s.logger.ErrorContext(ctx, "Error getting recommendations", "error", redact.Error(err))
		metrics.Recommendations.WithLabelValues(metrics.OutcomeGenerationError).Inc()
		return errorResult(redact.Error(err))
	}

	result, err := s.parse(text)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to parse recommendation response",
			"error", err,
			"response_length", len(text))
		metrics.Recommendations.WithLabelValues(metrics.OutcomeParseError).Inc()
		return errorResult(ParseFailureMessage)
	}

	result.Condition = condition
	metrics.Recommendations.WithLabelValues(metrics.OutcomeSuccess).Inc()
	return result
}

// parse decodes and validates the model's answer.
func (s *Service) parse(text string) (Result, error) {
	var result Result
	if err := json.Unmarshal([]byte(stripFence(text)), &result); err != nil {
		return Result{}, err
	}
	// A model-supplied "error" key is not a payload.
	result.Error = ""
	if err := s.validate.Struct(result); err != nil {
		return Result{}, err
	}
	return result, nil
}
