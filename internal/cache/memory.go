package cache

import (
	"context"
	"strings"
	"sync"
)

// Memory is an in-process Store. It backs tests and one-shot runs where
// persistence across invocations is not wanted.
type Memory struct {
	mu      sync.RWMutex
	digests map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{digests: make(map[string]string)}
}

func (m *Memory) Lookup(_ context.Context, chunkID string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	digest, found := m.digests[chunkID]
	return digest, found, nil
}

func (m *Memory) Record(_ context.Context, chunkID, digest string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.digests[chunkID] = digest
	return nil
}

func (m *Memory) Forget(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id := range m.digests {
		if strings.HasPrefix(id, prefix) {
			delete(m.digests, id)
		}
	}
	return nil
}

func (m *Memory) Close() error { return nil }
