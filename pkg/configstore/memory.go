package configstore

import (
	"context"
	"sync"
)

// MemoryStore is a sync.Map-backed Store with no persistence, used as the
// default in tests and for engines that don't need state to survive a
// restart.
type MemoryStore struct {
	values sync.Map
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Get returns the stored value for key, if any.
func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m.values.Load(key)
	if !ok {
		return "", false, nil
	}
	return v.(string), true, nil
}

// Set stores value under key, overwriting any previous value.
func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.values.Store(key, value)
	return nil
}
