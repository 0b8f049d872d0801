package clienttest

import (
	"sync"
)

// MemStore is an in-memory CredentialStore for tests.
type MemStore struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{values: make(map[string]string)}
}

// Name identifies the backend.
func (m *MemStore) Name() string { return "mem" }

// Save stores the value.
func (m *MemStore) Save(key, value string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return true
}

// Get returns the value and whether it was present.
func (m *MemStore) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

// Remove deletes the key.
func (m *MemStore) Remove(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return true
}

// ClearAll wipes the store.
func (m *MemStore) ClearAll() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = make(map[string]string)
	return true
}
