package task

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/skincare-api/internal/platform/metrics"
)

type memoryEntry struct {
	record    Record
	updatedAt time.Time
}

// MemoryStore is a process-local Store guarded by a single RWMutex.
// Records are lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]memoryEntry

	// ttl evicts terminal records older than this; zero disables eviction
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore. A positive ttl enables
// eviction of completed and failed records once Run is started.
func NewMemoryStore(ttl time.Duration, logger *slog.Logger) *MemoryStore {
	return &MemoryStore{
		records: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
		logger:  logger,
	}
}

// Create registers id as processing.
func (s *MemoryStore) Create(_ context.Context, id string) error {
	s.put(id, ProcessingRecord())
	return nil
}

// Update replaces the record at id.
func (s *MemoryStore) Update(_ context.Context, id string, record Record) error {
	s.put(id, record)
	return nil
}

// Get returns the record for id or NotFoundRecord.
func (s *MemoryStore) Get(_ context.Context, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.records[id]
	if !ok {
		return NotFoundRecord(), nil
	}
	return entry.record, nil
}

// Delete removes the record at id.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.records, id)
	count := len(s.records)
	s.mu.Unlock()

	metrics.StoredTasks.Set(float64(count))
	return nil
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *MemoryStore) put(id string, record Record) {
	s.mu.Lock()
	s.records[id] = memoryEntry{record: record, updatedAt: s.now()}
	count := len(s.records)
	s.mu.Unlock()

	metrics.StoredTasks.Set(float64(count))
}

// Sweep removes terminal records last updated before now minus the TTL and
// returns how many were removed. Processing records are never evicted.
func (s *MemoryStore) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}

	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	removed := 0
	for id, entry := range s.records {
		if entry.record.Status.IsTerminal() && entry.updatedAt.Before(cutoff) {
			delete(s.records, id)
			removed++
		}
	}
	count := len(s.records)
	s.mu.Unlock()

	metrics.StoredTasks.Set(float64(count))
	return removed
}

// Run sweeps expired records periodically until ctx is cancelled. It returns
// immediately when no TTL is configured.
func (s *MemoryStore) Run(ctx context.Context) {
	if s.ttl <= 0 {
		return
	}

	interval := s.ttl / 2
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
			if removed := s.Sweep(); removed > 0 {
				s.logger.Debug("evicted expired task records", "count", removed)
			}
		}
	}
}
