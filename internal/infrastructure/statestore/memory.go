package statestore

import (
	"encoding/json"
	"sync"

	"github.com/orderexport/amazon-order-exporter/internal/domain/model"
)

// MemoryStore is an in-memory Store for tests. Values round-trip through
// JSON so callers see the same copy semantics as the SQLite store.
type MemoryStore struct {
	mu     sync.Mutex
	states map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]string)}
}

func (m *MemoryStore) Load(key string) (*model.ExportState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	value, ok := m.states[key]
	if !ok {
		return nil, ErrNotFound
	}
	var state model.ExportState
	if err := json.Unmarshal([]byte(value), &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (m *MemoryStore) Save(key string, state *model.ExportState) error {
	value, err := json.Marshal(state)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[key] = string(value)
	return nil
}

func (m *MemoryStore) Clear(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, key)
	return nil
}
