// Package storage provides the named-slot key/value persistence used for
// shopping carts and admin sessions. A slot holds one serialized value and
// is always replaced as a whole; there is no locking across writers, so the
// last write wins.
package storage

import (
	"context"
	"sync"
)

// Storage is a flat key/value store of string slots
type Storage interface {
	// Get returns the slot value and whether it exists
	Get(ctx context.Context, key string) (string, bool, error)

	// Set replaces the slot value
	Set(ctx context.Context, key, value string) error

	// Delete erases the slot. Deleting a missing slot is not an error.
	Delete(ctx context.Context, key string) error
}

// MemoryStorage is an in-process Storage, safe for concurrent use
type MemoryStorage struct {
	mu    sync.RWMutex
	slots map[string]string
}

// NewMemoryStorage creates an empty in-memory storage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		slots: make(map[string]string),
	}
}

func (m *MemoryStorage) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.slots[key]
	return value, ok, nil
}

func (m *MemoryStorage) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.slots[key] = value
	return nil
}

func (m *MemoryStorage) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.slots, key)
	return nil
}
