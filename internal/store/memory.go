package store

import (
	"context"
	"sync"
)

// MemoryStore keeps documents in process memory. Used in development and tests.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string][]byte)}
}

// Name returns the backend name.
func (s *MemoryStore) Name() string { return "memory" }

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

// Load returns a copy of the named document.
func (s *MemoryStore) Load(ctx context.Context, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.docs[name]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

// Save replaces all given documents at once.
func (s *MemoryStore) Save(ctx context.Context, docs ...Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, doc := range docs {
		s.docs[doc.Name] = append([]byte(nil), doc.Body...)
	}
	return nil
}
