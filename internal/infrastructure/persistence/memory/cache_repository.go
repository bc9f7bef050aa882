// Package memory provides an in-process cache repository used when Redis is
// disabled and in tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/prepline/v1/internal/ports/outbound"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// CacheRepository is a minimal TTL cache guarded by a mutex
type CacheRepository struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewCacheRepository creates an empty in-memory cache
func NewCacheRepository() outbound.CacheRepository {
	return &CacheRepository{entries: make(map[string]entry)}
}

// Get retrieves a value; a missing or expired key returns nil without error
func (c *CacheRepository) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, nil
	}
	value := make([]byte, len(e.value))
	copy(value, e.value)
	return value, nil
}

// Set stores a value with TTL; a non-positive TTL never expires
func (c *CacheRepository) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	c.mu.Lock()
	c.entries[key] = entry{value: stored, expiresAt: expiresAt}
	c.mu.Unlock()
	return nil
}

// Delete removes a value
func (c *CacheRepository) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}
