package task

import (
	"context"
	"io"
	"log/slog"
	"sync"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// fakeTask is a Task whose behaviour is supplied by the test.
type fakeTask struct {
	id      string
	execute func(ctx context.Context) error
}

func (t *fakeTask) ID() string   { return t.id }
func (t *fakeTask) Type() string { return "fake" }

func (t *fakeTask) Execute(ctx context.Context) error {
	if t.execute == nil {
		return nil
	}
	return t.execute(ctx)
}

// failingStore is a Store whose writes always fail.
type failingStore struct {
	err error
}

func (s failingStore) Create(context.Context, string) error         { return s.err }
func (s failingStore) Update(context.Context, string, Record) error { return s.err }
func (s failingStore) Get(context.Context, string) (Record, error)  { return Record{}, s.err }
func (s failingStore) Delete(context.Context, string) error         { return s.err }

// recordingStore wraps a MemoryStore and remembers the order of writes.
type recordingStore struct {
	*MemoryStore
	mu      sync.Mutex
	updates []Record
}

func newRecordingStore() *recordingStore {
	return &recordingStore{MemoryStore: NewMemoryStore(0, setupTestLogger())}
}

func (s *recordingStore) Update(ctx context.Context, id string, record Record) error {
	s.mu.Lock()
	s.updates = append(s.updates, record)
	s.mu.Unlock()
	return s.MemoryStore.Update(ctx, id, record)
}

func (s *recordingStore) updateCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.updates)
}
