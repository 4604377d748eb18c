//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/skincare-api/internal/task"
	"github.com/phrazzld/skincare-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db := testdb.Open(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, Migrate(context.Background(), db, "up", logger))
	return db
}

// withTx hands fn a store bound to a transaction that is always rolled back.
func withTx(t *testing.T, db *sql.DB, fn func(store *TaskStore)) {
	t.Helper()
	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		fn(NewTaskStore(tx))
	})
}

func TestTaskStore_Lifecycle(t *testing.T) {
	db := setupTestDB(t)

	withTx(t, db, func(store *TaskStore) {
		ctx := context.Background()
		id := uuid.NewString()

		record, err := store.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, task.NotFoundRecord(), record)

		require.NoError(t, store.Create(ctx, id))
		record, err = store.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, task.ProcessingRecord(), record)

		completed := task.CompletedRecord(map[string]any{
			"predicted_class": "melanoma",
			"confidence":      0.42,
		})
		require.NoError(t, store.Update(ctx, id, completed))

		record, err = store.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, completed, record)

		require.NoError(t, store.Delete(ctx, id))
		record, err = store.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, task.NotFoundRecord(), record)
	})
}

func TestTaskStore_GarbageIDs(t *testing.T) {
	db := setupTestDB(t)

	withTx(t, db, func(store *TaskStore) {
		for _, id := range []string{"", "not-a-uuid", "'; DROP TABLE tasks; --", "\xff\xfe", "a\x00b"} {
			record, err := store.Get(context.Background(), id)
			require.NoError(t, err)
			assert.Equal(t, task.TaskStatusNotFound, record.Status)
		}
	})
}

func TestTaskStore_DeleteFinishedBefore(t *testing.T) {
	db := setupTestDB(t)

	withTx(t, db, func(store *TaskStore) {
		ctx := context.Background()
		done := uuid.NewString()
		running := uuid.NewString()

		require.NoError(t, store.Update(ctx, done, task.FailedRecord("boom")))
		require.NoError(t, store.Create(ctx, running))

		removed, err := store.DeleteFinishedBefore(ctx, time.Now().Add(time.Minute))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, removed, int64(1))

		record, err := store.Get(ctx, done)
		require.NoError(t, err)
		assert.Equal(t, task.TaskStatusNotFound, record.Status)

		record, err = store.Get(ctx, running)
		require.NoError(t, err)
		assert.Equal(t, task.TaskStatusProcessing, record.Status)
	})
}
