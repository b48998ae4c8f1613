package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is an in-process Store bounded by entry count. Eviction removes the
// oldest inserted key (insertion order, not access order). Expired entries
// are deleted lazily on lookup.
type Memory struct {
	mu       sync.Mutex
	entries  map[string]memoryEntry
	order    []string // insertion order; may hold keys already deleted
	capacity int
	now      func() time.Time
}

// NewMemory creates a memory store holding at most capacity entries.
func NewMemory(capacity int) *Memory {
	if capacity < 1 {
		capacity = 1
	}
	return &Memory{
		entries:  make(map[string]memoryEntry),
		capacity: capacity,
		now:      time.Now,
	}
}

// SetClock replaces the time source. Test hook.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// Get returns the unexpired value for key.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if m.now().After(e.expiresAt) {
		delete(m.entries, key)
		return nil, false
	}
	return e.value, true
}

// Set stores value under key, evicting the oldest inserted entry when full.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, exists := m.entries[key]
	if !exists && len(m.entries) >= m.capacity {
		m.evictOldestLocked()
	}

	m.entries[key] = memoryEntry{value: value, expiresAt: m.now().Add(ttl)}
	if !exists {
		m.order = append(m.order, key)
	}
}

// evictOldestLocked removes the front of the insertion order, skipping keys
// that were already deleted lazily.
func (m *Memory) evictOldestLocked() {
	for len(m.order) > 0 {
		key := m.order[0]
		m.order = m.order[1:]
		if _, ok := m.entries[key]; ok {
			delete(m.entries, key)
			return
		}
	}
}

// Len returns the number of live (possibly expired) entries.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Clear removes all entries.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]memoryEntry)
	m.order = nil
}

var _ Store = (*Memory)(nil)
