package settings

import (
	"context"
	"sync"
)

// Store persists Settings. Load must return the newest saved value; Save
// replaces the whole object.
type Store interface {
	Load(ctx context.Context) (Settings, error)
	Save(ctx context.Context, s Settings) error
}

// MemoryStore keeps Settings in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	settings Settings
}

// NewMemoryStore returns a MemoryStore holding initial.
func NewMemoryStore(initial Settings) *MemoryStore {
	return &MemoryStore{settings: initial}
}

// Ensure MemoryStore implements Store at compile time.
var _ Store = (*MemoryStore)(nil)

func (m *MemoryStore) Load(_ context.Context) (Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings, nil
}

func (m *MemoryStore) Save(_ context.Context, s Settings) error {
	m.mu.Lock()
	m.settings = s
	m.mu.Unlock()
	return nil
}
