package identity

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Store maps a device key to a push user id. GetOrCreate is idempotent: the
// same key always yields the same id.
type Store interface {
	GetOrCreate(ctx context.Context, key string) (string, error)
}

// MemoryStore keeps ids in process memory. Ids are lost on restart.
type MemoryStore struct {
	mu  sync.Mutex
	ids map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{ids: make(map[string]string)}
}

func (s *MemoryStore) GetOrCreate(_ context.Context, key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.ids[key]; ok {
		return id, nil
	}
	id := uuid.NewString()
	s.ids[key] = id
	return id, nil
}

// Len returns the number of stored ids.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}
