package task

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/skincare-api/internal/platform/metrics"
	"github.com/phrazzld/skincare-api/internal/redact"
)

// TaskRunnerConfig holds configuration for the task runner
type TaskRunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue
	QueueSize int

	// JobTimeout bounds one classification; zero leaves it unbounded
	JobTimeout time.Duration

	// UploadDir receives the temporary upload files; empty means os.TempDir()
	UploadDir string
}

// DefaultTaskRunnerConfig returns a TaskRunnerConfig with reasonable defaults
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount: 4,
		QueueSize:   100,
	}
}

// TaskRunner accepts uploads and classifies them in the background.
type TaskRunner struct {
	store      Store
	classifier Classifier
	queue      *TaskQueue
	pool       *WorkerPool
	config     TaskRunnerConfig
	logger     *slog.Logger
}

// NewTaskRunner creates a new TaskRunner. Call Start before Submit.
func NewTaskRunner(store Store, classifier Classifier, config TaskRunnerConfig, logger *slog.Logger) *TaskRunner {
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultTaskRunnerConfig().QueueSize
	}
	if config.UploadDir == "" {
		config.UploadDir = os.TempDir()
	}

	logger = logger.With("component", "task_runner")
	queue := NewTaskQueue(config.QueueSize, logger)
	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: config.WorkerCount}, logger)

	return &TaskRunner{
		store:      store,
		classifier: classifier,
		queue:      queue,
		pool:       pool,
		config:     config,
		logger:     logger,
	}
}

// Start prepares the upload directory and launches the workers.
func (r *TaskRunner) Start() error {
	if err := os.MkdirAll(r.config.UploadDir, 0o750); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	r.pool.Start()
	return nil
}

// SetErrorHandler registers a callback for jobs that return an error. The
// failure is already recorded when it runs. Call before Start.
func (r *TaskRunner) SetErrorHandler(handler func(id string, err error)) {
	r.pool.SetErrorHandler(func(t Task, err error) {
		handler(t.ID(), err)
	})
}

// Stop refuses new submissions, cancels running classifications and waits
// for every queued job to record its outcome and delete its file.
func (r *TaskRunner) Stop() {
	r.queue.Close()
	r.pool.Stop()
}

// Submit saves the upload to a temporary .jpg file, registers a new task as
// processing and queues its classification. It returns the task id without
// waiting for the classification.
//
// When the queue is full the file and the task record are deleted and the
// returned error wraps ErrQueueFull (ErrQueueClosed after Stop).
func (r *TaskRunner) Submit(ctx context.Context, upload io.Reader) (string, error) {
	path, err := r.saveUpload(upload)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	if err := r.store.Create(ctx, id); err != nil {
		r.removeFile(ctx, id, path)
		return "", fmt.Errorf("failed to register task: %w", err)
	}

	job := NewClassificationJob(id, path, r.classifier, r.store, r.config.JobTimeout, r.logger)
	if err := r.queue.Enqueue(job); err != nil {
		r.removeFile(ctx, id, path)
		metrics.TasksFailed.WithLabelValues(metrics.ReasonQueueFull).Inc()
		if deleteErr := r.store.Delete(ctx, id); deleteErr != nil {
			r.logger.ErrorContext(ctx, "Failed to remove rejected task", "task_id", id, "error", deleteErr)
		}
		r.logger.WarnContext(ctx, "Rejected upload", "task_id", id, "error", err)
		return "", err
	}

	metrics.TasksSubmitted.Inc()
	r.logger.InfoContext(ctx, "Task submitted", "task_id", id)
	return id, nil
}

// saveUpload copies the upload to a uniquely named file in the upload dir.
func (r *TaskRunner) saveUpload(upload io.Reader) (string, error) {
	file, err := os.CreateTemp(r.config.UploadDir, "upload-*.jpg")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	path := file.Name()

	if _, err := io.Copy(file, upload); err != nil {
		_ = file.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to save upload: %w", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to save upload: %w", err)
	}
	return path, nil
}

func (r *TaskRunner) removeFile(ctx context.Context, id, path string) {
	if err := os.Remove(path); err != nil {
		metrics.CleanupFailures.Inc()
		r.logger.WarnContext(ctx, "Could not clean up temp file", "task_id", id, "error", redact.Error(err))
	}
}
