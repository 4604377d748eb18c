package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/phrazzld/skincare-api/internal/task"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "skincare:task:abc", Key("abc"))
}

func TestTaskStore_UnreachableServer(t *testing.T) {
	client := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer func() { _ = client.Close() }()

	store := NewTaskStore(client, 0)
	ctx := context.Background()

	_, err := store.Get(ctx, "id")
	require.Error(t, err)
	assert.False(t, errors.Is(err, goredis.Nil))

	assert.Error(t, store.Update(ctx, "id", task.FailedRecord("x")))
	assert.Error(t, store.Delete(ctx, "id"))
}
