package storage

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// MemoryStore keeps documents in process memory. It backs tests and local
// development runs that have no bucket configured.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
	ttl     time.Duration
}

// NewMemoryStore builds an in-memory document store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte), ttl: time.Hour}
}

// PresignUpload returns a placeholder URL; nothing accepts PUTs against it.
func (m *MemoryStore) PresignUpload(_ context.Context, key, _ string) (string, time.Duration, error) {
	return fmt.Sprintf("https://uploads.invalid/%s", key), m.ttl, nil
}

// Upload stores the document bytes under key.
func (m *MemoryStore) Upload(_ context.Context, key, _ string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

// Object returns the stored bytes for key, for test assertions.
func (m *MemoryStore) Object(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[key]
	return data, ok
}
