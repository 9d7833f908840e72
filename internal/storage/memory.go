package storage

import (
	"context"
	"io"
	"sync"
)

// InMemoryStore is an in-memory implementation of Store.
// This is intended for testing. Production should use S3Store.
type InMemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewInMemoryStore creates a new in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{objects: make(map[string][]byte)}
}

// Put stores the content under the given path.
func (s *InMemoryStore) Put(_ context.Context, path string, content io.Reader) error {
	data, err := io.ReadAll(content)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[path] = data
	return nil
}

// Delete removes the object at path. Missing objects are a no-op.
func (s *InMemoryStore) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, path)
	return nil
}

// Exists reports whether an object is stored under path.
func (s *InMemoryStore) Exists(_ context.Context, path string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[path]
	return ok, nil
}

// Len returns the number of stored objects. Test helper.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

// Ensure InMemoryStore implements Store interface.
var _ Store = (*InMemoryStore)(nil)
