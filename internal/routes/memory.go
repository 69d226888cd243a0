package routes

import (
	"context"
	"sync"
)

// MemoryStore serves a configuration held in memory. Embedders replace the
// whole configuration at once when their own state changes.
type MemoryStore struct {
	mu  sync.RWMutex
	cfg Config
}

// NewMemoryStore constructs a MemoryStore seeded with cfg.
func NewMemoryStore(cfg Config) *MemoryStore {
	return &MemoryStore{cfg: cfg.Clone()}
}

// Snapshot returns a copy of the current configuration.
func (m *MemoryStore) Snapshot(_ context.Context) (Config, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg.Clone(), nil
}

// Replace swaps in a new configuration.
func (m *MemoryStore) Replace(cfg Config) {
	cfg = cfg.Clone()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg = cfg
}
