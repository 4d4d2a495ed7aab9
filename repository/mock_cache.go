package repository

import (
	"context"
	"sync"
	"time"
)

// MockCache is the in-process fallback used when no Redis address is
// configured. TTLs are honored so staleness behavior matches production.
type MockCache struct {
	mu      sync.Mutex
	data    map[string]string
	expires map[string]time.Time
}

func NewMockCache() *MockCache {
	return &MockCache{
		data:    make(map[string]string),
		expires: make(map[string]time.Time),
	}
}

func (m *MockCache) Get(ctx context.Context, key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, hasExp := m.expires[key]
	if hasExp && time.Now().After(exp) {
		delete(m.data, key)
		delete(m.expires, key)
		return "", false
	}
	val, ok := m.data[key]
	return val, ok
}

func (m *MockCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	if ttl > 0 {
		m.expires[key] = time.Now().Add(ttl)
	} else {
		delete(m.expires, key)
	}
	return nil
}
