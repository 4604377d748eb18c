// Package redis provides a Redis implementation of task.Store. Records are
// stored as JSON strings; finished records can expire after a configured TTL.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/skincare-api/internal/task"
	goredis "github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces task keys.
const KeyPrefix = "skincare:task:"

// Connect creates a client for addr and verifies it with a ping.
func Connect(ctx context.Context, addr string, logger *slog.Logger) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:         addr,
		PoolSize:     10,
		MinIdleConns: 2,
		PoolTimeout:  5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	logger.Info("Redis connection established", "addr", addr)
	return client, nil
}

// TaskStore implements task.Store on Redis string keys.
type TaskStore struct {
	client goredis.Cmdable
	// ttl applies to completed and failed records; zero keeps them forever
	ttl time.Duration
}

var _ task.Store = (*TaskStore)(nil)

// NewTaskStore creates a TaskStore. A positive ttl expires finished records.
func NewTaskStore(client goredis.Cmdable, ttl time.Duration) *TaskStore {
	return &TaskStore{client: client, ttl: ttl}
}

// Key returns the Redis key for a task id.
func Key(id string) string {
	return KeyPrefix + id
}

// Create stores id as processing without expiry.
func (s *TaskStore) Create(ctx context.Context, id string) error {
	return s.Update(ctx, id, task.ProcessingRecord())
}

// Update replaces the record at id.
func (s *TaskStore) Update(ctx context.Context, id string, record task.Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal task record: %w", err)
	}

	var expiration time.Duration
	if record.Status.IsTerminal() {
		expiration = s.ttl
	}

	if err := s.client.Set(ctx, Key(id), data, expiration).Err(); err != nil {
		return fmt.Errorf("failed to write task record: %w", err)
	}
	return nil
}

// Delete removes the key for id.
func (s *TaskStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, Key(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete task record: %w", err)
	}
	return nil
}

// Get returns the record at id or task.NotFoundRecord.
func (s *TaskStore) Get(ctx context.Context, id string) (task.Record, error) {
	data, err := s.client.Get(ctx, Key(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return task.NotFoundRecord(), nil
	}
	if err != nil {
		return task.Record{}, fmt.Errorf("failed to read task record: %w", err)
	}

	var record task.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return task.Record{}, fmt.Errorf("failed to unmarshal task record: %w", err)
	}
	return record, nil
}
