package repository

import (
	"context"
	"sync"
)

type memoryDocument struct {
	data        []byte
	contentType string
}

// MemoryStore is an in-memory DocumentStore used for local runs and tests.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]memoryDocument
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]memoryDocument)}
}

func (s *MemoryStore) Download(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[path]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(doc.data))
	copy(out, doc.data)
	return out, nil
}

func (s *MemoryStore) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]byte, len(data))
	copy(stored, data)
	s.docs[path] = memoryDocument{data: stored, contentType: contentType}
	return nil
}

func (s *MemoryStore) Exists(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.docs[path]
	return ok, nil
}
