// Package storage defines the durable key/value text store drafts are kept in
// and ships an in-memory backend. File and sqlite backends live in the
// filestore and sqlite subpackages.
package storage

import (
	"errors"
	"sort"
	"sync"
)

// ErrQuotaExceeded is returned when a write would exceed the backend quota.
var ErrQuotaExceeded = errors.New("storage: quota exceeded")

// Backend is a durable string-to-string store scoped to one origin.
type Backend interface {
	// GetItem returns the stored value and whether the key exists.
	GetItem(key string) (string, bool, error)
	// SetItem stores value under key, replacing any previous value.
	SetItem(key, value string) error
	// RemoveItem deletes key. Removing a missing key is not an error.
	RemoveItem(key string) error
}

// Lister is implemented by backends that can enumerate their keys.
type Lister interface {
	Keys() ([]string, error)
}

// Memory is an in-memory Backend with an optional byte quota counted over
// keys and values.
type Memory struct {
	mu    sync.RWMutex
	items map[string]string
	quota int
	used  int
}

var (
	_ Backend = (*Memory)(nil)
	_ Lister  = (*Memory)(nil)
)

// NewMemory returns an empty backend. A quota of zero or less is unlimited.
func NewMemory(quota int) *Memory {
	return &Memory{items: make(map[string]string), quota: quota}
}

// GetItem implements Backend.
func (m *Memory) GetItem(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.items[key]
	return value, ok, nil
}

// SetItem implements Backend. A write that would exceed the quota leaves the
// previous value in place.
func (m *Memory) SetItem(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	used := m.used + len(value)
	if old, ok := m.items[key]; ok {
		used -= len(old)
	} else {
		used += len(key)
	}
	if m.quota > 0 && used > m.quota {
		return ErrQuotaExceeded
	}
	m.items[key] = value
	m.used = used
	return nil
}

// RemoveItem implements Backend.
func (m *Memory) RemoveItem(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.items[key]; ok {
		m.used -= len(key) + len(old)
		delete(m.items, key)
	}
	return nil
}

// Keys implements Lister, sorted.
func (m *Memory) Keys() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.items))
	for key := range m.items {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// Used reports the bytes currently counted against the quota.
func (m *Memory) Used() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.used
}
