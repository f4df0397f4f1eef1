package keyring

import (
	"context"
	"sync"
)

// Store persists keys per application.
type Store interface {
	List(ctx context.Context, application string) ([]Key, error)
	Save(ctx context.Context, application string, key Key) error
}

// MemoryStore keeps keys in process memory. Keys do not survive a restart,
// so cookies issued before a restart become unreadable.
type MemoryStore struct {
	mu   sync.RWMutex
	keys map[string][]Key
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{keys: make(map[string][]Key)}
}

// List returns a copy of the application's keys.
func (s *MemoryStore) List(_ context.Context, application string) ([]Key, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Key, len(s.keys[application]))
	copy(out, s.keys[application])

	return out, nil
}

// Save appends key, replacing any key with the same id.
func (s *MemoryStore) Save(_ context.Context, application string, key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := s.keys[application]
	for i := range keys {
		if keys[i].ID == key.ID {
			keys[i] = key
			return nil
		}
	}

	s.keys[application] = append(keys, key)

	return nil
}
