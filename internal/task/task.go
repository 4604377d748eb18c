package task

import (
	"context"
)

// TaskStatus represents the current state of a task
type TaskStatus string

// Possible task status values
const (
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
	// TaskStatusNotFound is returned for ids the store does not know.
	// It is never stored.
	TaskStatusNotFound TaskStatus = "not_found"
)

// IsTerminal reports whether no further transition can happen.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// Task type constants
const (
	// TaskTypeClassification labels a skin image with a condition
	TaskTypeClassification = "classification"
)

// DefaultPrediction is recorded when the classifier omits predicted_class.
const DefaultPrediction = "unknown"

// Record is the client-visible state of a task.
type Record struct {
	Status     TaskStatus     `json:"status"`
	Prediction string         `json:"prediction,omitempty"`
	Confidence *float64       `json:"confidence,omitempty"`
	FullOutput map[string]any `json:"full_output,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// ProcessingRecord is the state of a freshly submitted task.
func ProcessingRecord() Record {
	return Record{Status: TaskStatusProcessing}
}

// NotFoundRecord is the sentinel returned for unknown ids.
func NotFoundRecord() Record {
	return Record{Status: TaskStatusNotFound}
}

// FailedRecord is the terminal state of a task whose classification failed.
func FailedRecord(message string) Record {
	return Record{Status: TaskStatusFailed, Error: message}
}

// Task represents a unit of background work to be processed
type Task interface {
	// ID returns the task's unique identifier
	ID() string

	// Type returns the task type identifier
	Type() string

	// Execute runs the task logic
	Execute(ctx context.Context) error
}

// TaskQueueReader provides read-only access to the task channel
// allowing workers to consume tasks without the ability to enqueue
type TaskQueueReader interface {
	// GetChannel returns a read-only channel for consuming tasks
	GetChannel() <-chan Task
}

// TaskQueueWriter provides write access to the task queue
// allowing services to enqueue tasks for processing
type TaskQueueWriter interface {
	// Enqueue adds a task to the queue for processing
	// Returns an error if the queue is full or closed
	Enqueue(task Task) error

	// Close closes the task queue, preventing further task submission
	Close()
}

// Store keeps task records by id. Implementations must be safe for
// concurrent use.
type Store interface {
	// Create registers id as processing, overwriting any existing record.
	Create(ctx context.Context, id string) error

	// Update replaces the record at id, inserting it if absent.
	Update(ctx context.Context, id string, record Record) error

	// Get returns the record for id, or NotFoundRecord when id is unknown.
	// An error means the backend itself failed.
	Get(ctx context.Context, id string) (Record, error)

	// Delete removes the record at id. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error
}

// Classifier labels the image stored at path. The returned map carries at
// least predicted_class and confidence when the model provides them.
type Classifier interface {
	Classify(ctx context.Context, path string) (map[string]any, error)
}

// ClassifierFunc adapts a plain function to the Classifier interface.
type ClassifierFunc func(ctx context.Context, path string) (map[string]any, error)

// Classify calls f(ctx, path).
func (f ClassifierFunc) Classify(ctx context.Context, path string) (map[string]any, error) {
	return f(ctx, path)
}
