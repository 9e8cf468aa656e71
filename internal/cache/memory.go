package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memory is the in-process cache layer. Entries expire on their own TTL
// and a background sweep reclaims them.
type Memory struct {
	store *gocache.Cache
}

// NewMemory creates a memory cache with the given default TTL.
func NewMemory(defaultTTL time.Duration) *Memory {
	return &Memory{
		store: gocache.New(defaultTTL, 10*time.Minute),
	}
}

// Get returns the cached value when present and unexpired.
func (m *Memory) Get(key string) ([]byte, bool) {
	if val, found := m.store.Get(key); found {
		return val.([]byte), true
	}
	return nil, false
}

// Set stores value under key. A zero ttl uses the cache default.
func (m *Memory) Set(key string, value []byte, ttl time.Duration) error {
	m.store.Set(key, value, ttl)
	return nil
}

// Delete removes key.
func (m *Memory) Delete(key string) error {
	m.store.Delete(key)
	return nil
}

// Clear drops every entry.
func (m *Memory) Clear() error {
	m.store.Flush()
	return nil
}
