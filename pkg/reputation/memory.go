package reputation

import (
	"context"
	"sync"
)

// MemoryStorage guarda las reputaciones en memoria. Seguro para uso concurrente.
type MemoryStorage struct {
	mu   sync.RWMutex
	reps map[string]Reputation
}

// NewMemoryStorage crea un MemoryStorage vacío.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{reps: make(map[string]Reputation)}
}

func (m *MemoryStorage) GetReputation(_ context.Context, address string) (Reputation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rep, ok := m.reps[address]
	if !ok {
		return Reputation{}, ErrNotFound
	}
	return rep, nil
}

func (m *MemoryStorage) SaveReputation(_ context.Context, rep Reputation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reps[rep.Address] = rep
	return nil
}
