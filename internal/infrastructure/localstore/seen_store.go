package localstore

import (
	"context"
)

const revealedKeyPrefix = "revealed:"

// SeenStore persists revealed message ids across restarts.
type SeenStore struct {
	store *Store
}

// NewSeenStore builds a seen-set over the given store.
func NewSeenStore(store *Store) *SeenStore {
	return &SeenStore{store: store}
}

func (s *SeenStore) Contains(_ context.Context, messageID string) (bool, error) {
	var marker bool
	return s.store.Get(revealedKeyPrefix+messageID, &marker)
}

func (s *SeenStore) Add(_ context.Context, messageID string) error {
	return s.store.Set(revealedKeyPrefix+messageID, true)
}
