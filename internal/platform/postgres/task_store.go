package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/phrazzld/skincare-api/internal/platform/logger"
	"github.com/phrazzld/skincare-api/internal/task"
)

// TaskStore implements task.Store on a tasks table.
type TaskStore struct {
	db DBTX
}

var _ task.Store = (*TaskStore)(nil)

// NewTaskStore creates a TaskStore using db.
func NewTaskStore(db DBTX) *TaskStore {
	return &TaskStore{db: db}
}

// Create inserts id as processing, resetting any previous row with that id.
func (s *TaskStore) Create(ctx context.Context, id string) error {
	return s.Update(ctx, id, task.ProcessingRecord())
}

// Update upserts the record at id.
func (s *TaskStore) Update(ctx context.Context, id string, record task.Record) error {
	log := logger.FromContext(ctx)

	var fullOutput any
	if record.FullOutput != nil {
		encoded, err := json.Marshal(record.FullOutput)
		if err != nil {
			return fmt.Errorf("failed to encode classifier output: %w", err)
		}
		fullOutput = encoded
	}

	query := `
		INSERT INTO tasks (id, status, prediction, confidence, full_output, error_message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			prediction = EXCLUDED.prediction,
			confidence = EXCLUDED.confidence,
			full_output = EXCLUDED.full_output,
			error_message = EXCLUDED.error_message,
			updated_at = EXCLUDED.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		id,
		string(record.Status),
		nullString(record.Prediction),
		record.Confidence,
		fullOutput,
		nullString(record.Error),
		time.Now().UTC(),
	)
	if err != nil {
		log.Error("failed to write task record",
			"task_id", id,
			"status", record.Status,
			"error", err)
		return fmt.Errorf("failed to write task record: %w", err)
	}

	return nil
}

// Get returns the record at id or task.NotFoundRecord. Ids a TEXT column
// cannot hold are never stored, so they are not found without a query.
func (s *TaskStore) Get(ctx context.Context, id string) (task.Record, error) {
	if !storableID(id) {
		return task.NotFoundRecord(), nil
	}

	query := `
		SELECT status, prediction, confidence, full_output, error_message
		FROM tasks
		WHERE id = $1
	`

	var (
		status     string
		prediction sql.NullString
		confidence sql.NullFloat64
		fullOutput []byte
		errorMsg   sql.NullString
	)

	err := s.db.QueryRowContext(ctx, query, id).Scan(&status, &prediction, &confidence, &fullOutput, &errorMsg)
	if errors.Is(err, sql.ErrNoRows) {
		return task.NotFoundRecord(), nil
	}
	if err != nil {
		logger.FromContext(ctx).Error("failed to read task record", "task_id", id, "error", err)
		return task.Record{}, fmt.Errorf("failed to read task record: %w", err)
	}

	record := task.Record{
		Status:     task.TaskStatus(status),
		Prediction: prediction.String,
		Error:      errorMsg.String,
	}
	if confidence.Valid {
		c := confidence.Float64
		record.Confidence = &c
	}
	if len(fullOutput) > 0 {
		if err := json.Unmarshal(fullOutput, &record.FullOutput); err != nil {
			return task.Record{}, fmt.Errorf("failed to decode classifier output: %w", err)
		}
	}

	return record, nil
}

// Delete removes the row at id.
func (s *TaskStore) Delete(ctx context.Context, id string) error {
	if !storableID(id) {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete task record: %w", err)
	}
	return nil
}

// storableID reports whether Postgres TEXT accepts id: valid UTF-8 without NUL.
func storableID(id string) bool {
	return utf8.ValidString(id) && !strings.ContainsRune(id, 0)
}

// DeleteFinishedBefore removes completed and failed records last updated
// before cutoff and returns how many rows were deleted.
func (s *TaskStore) DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE status IN ('completed', 'failed') AND updated_at < $1`,
		cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired task records: %w", err)
	}
	return result.RowsAffected()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// RunExpiry deletes finished records older than ttl periodically until ctx is
// cancelled. It returns immediately when ttl is not positive.
func (s *TaskStore) RunExpiry(ctx context.Context, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	interval := ttl / 2
	if interval < time.Second {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.DeleteFinishedBefore(ctx, time.Now().Add(-ttl))
			if err != nil {
				logger.FromContext(ctx).Error("failed to expire task records", "error", err)
				continue
			}
			if removed > 0 {
				logger.FromContext(ctx).Debug("expired task records", "count", removed)
			}
		}
	}
}
