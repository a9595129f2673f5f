// internal/storage/quotes/memory.go
package quotes

import (
	"context"
	"sync"
	"time"

	"github.com/newthinker/stocksim/internal/core"
)

type closeKey struct {
	symbol string
	asOf   string
}

// MemoryStore is an in-memory quote cache.
type MemoryStore struct {
	closes  map[closeKey]Close
	order   []closeKey
	names   map[string]string
	maxSize int
	mu      sync.RWMutex
}

// NewMemoryStore creates a new in-memory store holding at most maxSize closes.
func NewMemoryStore(maxSize int) *MemoryStore {
	return &MemoryStore{
		closes:  make(map[closeKey]Close),
		names:   make(map[string]string),
		maxSize: maxSize,
	}
}

func keyOf(symbol string, asOf time.Time) closeKey {
	return closeKey{symbol: symbol, asOf: asOf.Format(core.DateLayout)}
}

// GetClose looks up a cached close.
func (m *MemoryStore) GetClose(ctx context.Context, symbol string, asOf time.Time) (Close, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.closes[keyOf(symbol, asOf)]
	return c, ok, nil
}

// PutClose caches a close, evicting the oldest entry when full.
func (m *MemoryStore) PutClose(ctx context.Context, c Close) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := keyOf(c.Symbol, c.AsOf)
	if _, exists := m.closes[key]; !exists {
		m.order = append(m.order, key)
	}
	m.closes[key] = c

	// Trim if over capacity (remove oldest)
	if m.maxSize > 0 && len(m.order) > m.maxSize {
		evict := m.order[:len(m.order)-m.maxSize]
		for _, k := range evict {
			delete(m.closes, k)
		}
		m.order = append([]closeKey(nil), m.order[len(evict):]...)
	}

	return nil
}

// GetName looks up a cached name.
func (m *MemoryStore) GetName(ctx context.Context, symbol string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	name, ok := m.names[symbol]
	return name, ok, nil
}

// PutName caches a name.
func (m *MemoryStore) PutName(ctx context.Context, symbol, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.names[symbol] = name
	return nil
}

// Close is a no-op for the memory store.
func (m *MemoryStore) Close() error {
	return nil
}

// Len returns the number of cached closes.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.closes)
}
