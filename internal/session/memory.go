package session

import (
	"context"
	"maps"
	"sync"
)

// MemoryStore хранит сессии в памяти процесса. Используется локально и в тестах.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]map[string][]byte)}
}

func (m *MemoryStore) Load(ctx context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	values, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	s := New(id)
	s.values = maps.Clone(values)
	return s, nil
}

func (m *MemoryStore) Save(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[s.ID()] = s.Values()
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
	return nil
}
