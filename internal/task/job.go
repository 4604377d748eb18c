package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/phrazzld/skincare-api/internal/platform/metrics"
	"github.com/phrazzld/skincare-api/internal/redact"
)

// ErrClassifierPanicked marks a classification that ended in a recovered panic.
var ErrClassifierPanicked = errors.New("classifier panicked")

// ClassificationJob classifies one uploaded file and records the outcome.
// It owns the file at path and deletes it exactly once.
type ClassificationJob struct {
	id         string
	path       string
	classifier Classifier
	store      Store
	timeout    time.Duration
	logger     *slog.Logger
	removeOnce sync.Once
}

var _ Task = (*ClassificationJob)(nil)

// NewClassificationJob creates a job for the file at path. A zero timeout
// leaves the classification unbounded.
func NewClassificationJob(
	id, path string,
	classifier Classifier,
	store Store,
	timeout time.Duration,
	logger *slog.Logger,
) *ClassificationJob {
	return &ClassificationJob{
		id:         id,
		path:       path,
		classifier: classifier,
		store:      store,
		timeout:    timeout,
		logger:     logger.With("task_id", id),
	}
}

// ID returns the task id.
func (j *ClassificationJob) ID() string { return j.id }

// Type returns TaskTypeClassification.
func (j *ClassificationJob) Type() string { return TaskTypeClassification }

// Execute runs the classifier and writes a completed or failed record. The
// temporary file is gone before the record becomes terminal. The returned
// error is the classification or store failure, already recorded.
func (j *ClassificationJob) Execute(ctx context.Context) (err error) {
	defer j.cleanup()

	// Records are written even after the pool context is cancelled.
	storeCtx := context.WithoutCancel(ctx)

	defer func() {
		if r := recover(); r != nil {
			j.cleanup()
			err = fmt.Errorf("%w: %v", ErrClassifierPanicked, r)
			j.fail(storeCtx, err, metrics.ReasonClassification)
		}
	}()

	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	j.logger.InfoContext(ctx, "Starting prediction in background")

	prediction, err := j.classify(ctx)
	j.cleanup()

	if err != nil {
		reason := metrics.ReasonClassification
		if errors.Is(err, context.DeadlineExceeded) {
			reason = metrics.ReasonTimeout
		}
		j.fail(storeCtx, err, reason)
		return fmt.Errorf("classification failed: %w", err)
	}

	j.logger.InfoContext(ctx, "Prediction result", "prediction", prediction)

	if err := j.store.Update(storeCtx, j.id, CompletedRecord(prediction)); err != nil {
		j.logger.ErrorContext(ctx, "Failed to record prediction", "error", err)
		return fmt.Errorf("failed to record prediction: %w", err)
	}

	metrics.TasksCompleted.Inc()
	j.logger.InfoContext(ctx, "Prediction complete")
	return nil
}

func (j *ClassificationJob) classify(ctx context.Context) (map[string]any, error) {
	metrics.TasksActive.Inc()
	defer metrics.TasksActive.Dec()

	start := time.Now()
	defer func() { metrics.TaskDuration.Observe(time.Since(start).Seconds()) }()

	return j.classifier.Classify(ctx, j.path)
}

func (j *ClassificationJob) fail(ctx context.Context, cause error, reason string) {
	metrics.TasksFailed.WithLabelValues(reason).Inc()
	j.logger.ErrorContext(ctx, "Prediction failed", "error", cause)

	if err := j.store.Update(ctx, j.id, FailedRecord(redact.Error(cause))); err != nil {
		j.logger.ErrorContext(ctx, "Failed to record prediction failure", "error", err)
	}
}

// cleanup deletes the temporary file; later calls are no-ops.
func (j *ClassificationJob) cleanup() {
	j.removeOnce.Do(func() {
		if err := os.Remove(j.path); err != nil {
			metrics.CleanupFailures.Inc()
			j.logger.Warn("Could not clean up temp file", "error", redact.Error(err))
		}
	})
}

// CompletedRecord builds the completed record for a classifier output,
// defaulting the prediction to DefaultPrediction and the confidence to 0.
func CompletedRecord(prediction map[string]any) Record {
	label := DefaultPrediction
	if v, ok := prediction["predicted_class"]; ok && v != nil {
		if s, ok := v.(string); ok {
			label = s
		} else {
			label = fmt.Sprint(v)
		}
	}

	confidence := toFloat(prediction["confidence"])

	return Record{
		Status:     TaskStatusCompleted,
		Prediction: label,
		Confidence: &confidence,
		FullOutput: prediction,
	}
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
