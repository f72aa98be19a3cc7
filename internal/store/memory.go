package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/rcliao/signal-memory/internal/model"
)

// MemoryStore is an in-process KV and Journal, used in tests and dry runs.
type MemoryStore struct {
	mu      sync.Mutex
	values  map[string][]byte
	journal []model.InteractionRecord
}

var (
	_ KV      = (*MemoryStore)(nil)
	_ Journal = (*MemoryStore)(nil)
)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.values[key]
	if !ok {
		return nil, fmt.Errorf("key %q: %w", key, ErrNotFound)
	}
	return append([]byte(nil), v...), nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = append([]byte(nil), value...)
	return nil
}

func (s *MemoryStore) Append(_ context.Context, rec model.InteractionRecord, keep int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.journal = append(s.journal, rec)
	if keep > 0 && len(s.journal) > keep {
		s.journal = append([]model.InteractionRecord(nil), s.journal[len(s.journal)-keep:]...)
	}
	return nil
}

func (s *MemoryStore) Recent(_ context.Context, limit int) ([]model.InteractionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := 0
	if limit > 0 && len(s.journal) > limit {
		start = len(s.journal) - limit
	}
	return append([]model.InteractionRecord(nil), s.journal[start:]...), nil
}
