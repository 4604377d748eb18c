package postgres

import (
	"context"
	"testing"

	"github.com/phrazzld/skincare-api/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorableID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{id: "3f1c2a9e-1111-4b2b-9c3d-000000000000", want: true},
		{id: "", want: true},
		{id: "ünïcode", want: true},
		{id: "\xff\xfe", want: false},
		{id: "a\x00b", want: false},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, storableID(tc.id), "%q", tc.id)
	}
}

func TestTaskStore_UnstorableIDsSkipTheDatabase(t *testing.T) {
	// A nil DBTX panics if the store issues a query.
	store := NewTaskStore(nil)
	ctx := context.Background()

	for _, id := range []string{"\xff\xfe", "a\x00b"} {
		record, err := store.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, task.NotFoundRecord(), record)

		assert.NoError(t, store.Delete(ctx, id))
	}
}
