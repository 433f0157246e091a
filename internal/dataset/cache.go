package dataset

import (
	"path/filepath"
	"sync"
)

// Cache memoizes loaded stores by directory so repeated client construction
// does not re-read the backing tables. Invalidation is manual.
type Cache struct {
	mu     sync.Mutex
	stores map[string]*Store
}

// NewCache creates an empty store cache.
func NewCache() *Cache {
	return &Cache{stores: make(map[string]*Store)}
}

// Load returns the cached store for dir, reading the tables on first call.
func (c *Cache) Load(dir string) (*Store, error) {
	key := cacheKey(dir)

	c.mu.Lock()
	defer c.mu.Unlock()

	if store, ok := c.stores[key]; ok {
		return store, nil
	}

	store, err := LoadDir(dir)
	if err != nil {
		return nil, err
	}
	c.stores[key] = store
	return store, nil
}

// Invalidate drops the cached store for dir so the next Load re-reads it.
func (c *Cache) Invalidate(dir string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.stores, cacheKey(dir))
}

// InvalidateAll drops every cached store.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stores = make(map[string]*Store)
}

func cacheKey(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return dir
	}
	return abs
}
