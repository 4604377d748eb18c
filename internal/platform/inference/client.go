// Package inference classifies skin images by posting them to a remote model
// server. The server receives a multipart form with an "image" file field and
// answers with a JSON object containing at least predicted_class and
// confidence.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/phrazzld/skincare-api/internal/config"
	"github.com/phrazzld/skincare-api/internal/imageprep"
)

// Errors returned by Classify.
var (
	ErrRequestFailed   = errors.New("inference request failed")
	ErrInvalidResponse = errors.New("invalid response from inference server")
)

// maxResponseBytes caps how much of the server's answer is read.
const maxResponseBytes = 1 << 20

// Client calls a remote classification endpoint.
type Client struct {
	endpoint     string
	httpClient   *http.Client
	maxDimension int
	logger       *slog.Logger
}

// NewClient creates a Client for cfg.Endpoint. A nil httpClient gets a
// client with a 60 second timeout.
func NewClient(cfg config.ClassifierConfig, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("inference endpoint cannot be empty")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}

	return &Client{
		endpoint:     cfg.Endpoint,
		httpClient:   httpClient,
		maxDimension: cfg.MaxDimension,
		logger:       logger.With("component", "inference"),
	}, nil
}

// Classify uploads the prepared image at path and decodes the JSON answer.
func (c *Client) Classify(ctx context.Context, path string) (map[string]any, error) {
	img, err := imageprep.Prepare(path, c.maxDimension)
	if err != nil {
		return nil, err
	}

	body, contentType, err := multipartBody(img)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrInvalidResponse, err)
	}

	c.logger.DebugContext(ctx, "Inference call finished",
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: server returned %d", ErrRequestFailed, resp.StatusCode)
	}

	var prediction map[string]any
	if err := json.Unmarshal(payload, &prediction); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if prediction == nil {
		return nil, fmt.Errorf("%w: empty prediction", ErrInvalidResponse)
	}
	return prediction, nil
}

func multipartBody(img []byte) (*bytes.Buffer, string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("image", "image.jpg")
	if err != nil {
		return nil, "", fmt.Errorf("failed to build inference request: %w", err)
	}
	if _, err := part.Write(img); err != nil {
		return nil, "", fmt.Errorf("failed to build inference request: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to build inference request: %w", err)
	}
	return &body, writer.FormDataContentType(), nil
}
