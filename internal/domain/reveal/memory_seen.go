package reveal

import (
	"context"
	"sync"
)

// MemorySeenStore is a process-local SeenStore.
type MemorySeenStore struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

// NewMemorySeenStore builds an empty in-memory seen-set.
func NewMemorySeenStore() *MemorySeenStore {
	return &MemorySeenStore{ids: make(map[string]struct{})}
}

func (s *MemorySeenStore) Contains(_ context.Context, messageID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[messageID]
	return ok, nil
}

func (s *MemorySeenStore) Add(_ context.Context, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids[messageID] = struct{}{}
	return nil
}
