package token

import (
	"context"
	"sync"
)

var _ Keyed = (*MemoryStore)(nil)

// MemoryStore is a process-local Keyed store. Tokens do not survive a restart.
type MemoryStore struct {
	mu    sync.RWMutex
	pairs map[string]Pair
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{pairs: make(map[string]Pair)}
}

func (m *MemoryStore) For(key string) Store {
	return &memoryEntry{parent: m, key: key}
}

// Len returns the number of browsers holding at least one token
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.pairs)
}

type memoryEntry struct {
	parent *MemoryStore
	key    string
}

func (e *memoryEntry) Save(_ context.Context, pair Pair) error {
	e.parent.mu.Lock()
	defer e.parent.mu.Unlock()
	if pair.Empty() {
		delete(e.parent.pairs, e.key)
		return nil
	}
	e.parent.pairs[e.key] = pair
	return nil
}

func (e *memoryEntry) Read(_ context.Context) (Pair, bool, error) {
	e.parent.mu.RLock()
	defer e.parent.mu.RUnlock()
	pair, ok := e.parent.pairs[e.key]
	return pair, ok && !pair.Empty(), nil
}

func (e *memoryEntry) SetAccessToken(_ context.Context, accessToken string) error {
	e.parent.mu.Lock()
	defer e.parent.mu.Unlock()
	pair := e.parent.pairs[e.key]
	pair.AccessToken = accessToken
	if pair.Empty() {
		delete(e.parent.pairs, e.key)
		return nil
	}
	e.parent.pairs[e.key] = pair
	return nil
}

func (e *memoryEntry) Clear(_ context.Context) error {
	e.parent.mu.Lock()
	defer e.parent.mu.Unlock()
	delete(e.parent.pairs, e.key)
	return nil
}
