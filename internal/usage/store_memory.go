package usage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps usage records in memory. Used in dev mode and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records []Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) List(ctx context.Context) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out, nil
}

// Add appends a record. The processing service normally writes records
// through its own pipeline; this entry point exists for seeding.
func (s *MemoryStore) Add(tokenCount int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, Record{
		ID:         uuid.NewString(),
		TokenCount: tokenCount,
		CreatedAt:  time.Now().UTC(),
	})
}
