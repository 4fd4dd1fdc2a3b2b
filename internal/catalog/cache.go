package catalog

import (
	"context"
	"sync"
)

// Cache stores raw catalog file bytes keyed by path.
type Cache interface {
	Get(ctx context.Context, path string) ([]byte, bool)
	Put(ctx context.Context, path string, data []byte) error
	Clear(ctx context.Context) error
}

// MemoryCache is an in-process Cache.
type MemoryCache struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{files: make(map[string][]byte)}
}

func (c *MemoryCache) Get(_ context.Context, path string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	data, ok := c.files[path]
	return data, ok
}

func (c *MemoryCache) Put(_ context.Context, path string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.files[path] = data
	return nil
}

func (c *MemoryCache) Clear(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.files = make(map[string][]byte)
	return nil
}

// Len returns the number of cached files.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.files)
}

// NopCache never stores anything.
type NopCache struct{}

func (NopCache) Get(context.Context, string) ([]byte, bool) { return nil, false }
func (NopCache) Put(context.Context, string, []byte) error  { return nil }
func (NopCache) Clear(context.Context) error                { return nil }
