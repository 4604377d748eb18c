package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/phrazzld/skincare-api/internal/config"
	"github.com/phrazzld/skincare-api/internal/generation"
	"github.com/phrazzld/skincare-api/internal/imageprep"
	"google.golang.org/genai"
)

const classificationPrompt = `You are a dermatology image classifier.
Classify the skin condition shown in the attached photo into exactly one of these labels:
{{range .Labels}}- {{.}}
{{end}}
Respond with only a JSON object of this shape:
{"predicted_class": "<one label from the list>", "confidence": <number between 0 and 1>, "top_k": [{"label": "<label>", "confidence": <number>}]}`

var classificationTemplate = template.Must(template.New("classification").Parse(classificationPrompt))

// Classifier labels skin images with a multimodal Gemini model.
type Classifier struct {
	logger       *slog.Logger
	client       *genai.Client
	model        string
	labels       []string
	maxDimension int
	prompt       string
}

// NewClassifier creates a Classifier. The API key comes from the LLM
// settings; model, labels and image size from the classifier settings.
func NewClassifier(
	ctx context.Context,
	logger *slog.Logger,
	llm config.LLMConfig,
	cfg config.ClassifierConfig,
	opts ...Option,
) (*Classifier, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if len(cfg.Labels) == 0 {
		return nil, fmt.Errorf("%w: %v", generation.ErrInvalidConfig, ErrNoLabels)
	}

	client, err := newClient(ctx, logger, llm.GeminiAPIKey, cfg.ModelName, opts...)
	if err != nil {
		return nil, err
	}

	var prompt bytes.Buffer
	if err := classificationTemplate.Execute(&prompt, struct{ Labels []string }{cfg.Labels}); err != nil {
		return nil, fmt.Errorf("failed to execute classification prompt: %w", err)
	}

	logger.InfoContext(ctx, "Gemini image classifier initialized",
		"model", cfg.ModelName,
		"label_count", len(cfg.Labels))

	return &Classifier{
		logger:       logger,
		client:       client,
		model:        cfg.ModelName,
		labels:       cfg.Labels,
		maxDimension: cfg.MaxDimension,
		prompt:       prompt.String(),
	}, nil
}

// Classify sends the image at path to Gemini and returns the decoded JSON
// answer. The map always contains the model's own keys; callers pick
// predicted_class and confidence from it.
func (c *Classifier) Classify(ctx context.Context, path string) (map[string]any, error) {
	if path == "" {
		return nil, ErrEmptyImagePath
	}

	img, err := imageprep.Prepare(path, c.maxDimension)
	if err != nil {
		return nil, err
	}

	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{Text: c.prompt},
			{InlineData: &genai.Blob{Data: img, MIMEType: imageprep.MIMEType}},
		},
	}}
	genConfig := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}

	c.logger.DebugContext(ctx, "Sending image to Gemini", "model", c.model, "image_bytes", len(img))

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, genConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
	}

	text, err := responseText(resp)
	if err != nil {
		return nil, err
	}

	return decodePrediction(text)
}

// decodePrediction parses the model's JSON, tolerating a markdown fence.
func decodePrediction(text string) (map[string]any, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimSuffix(text, "```")

	var prediction map[string]any
	if err := json.Unmarshal([]byte(text), &prediction); err != nil {
		return nil, fmt.Errorf("%w: classification is not a JSON object: %v",
			generation.ErrInvalidResponse, err)
	}
	if prediction == nil {
		return nil, fmt.Errorf("%w: classification is empty", generation.ErrInvalidResponse)
	}
	return prediction, nil
}
