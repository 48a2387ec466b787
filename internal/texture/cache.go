package texture

import (
	"image"
	"os"
	"sync"
)

// Cache is a concurrency-safe image cache keyed by path. When an Index is
// attached, paths that no longer exist are resolved by file stem.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*cacheEntry
	index *Index
}

type cacheEntry struct {
	img *image.NRGBA
	err error
}

// NewCache creates a cache. index may be nil.
func NewCache(index *Index) *Cache {
	return &Cache{
		items: make(map[string]*cacheEntry),
		index: index,
	}
}

// Load decodes path once and returns the cached result afterwards, including
// a cached failure.
func (c *Cache) Load(path string) (*image.NRGBA, error) {
	path = c.resolve(path)

	c.mu.RLock()
	if entry, ok := c.items[path]; ok {
		c.mu.RUnlock()
		return entry.img, entry.err
	}
	c.mu.RUnlock()

	img, err := LoadImage(path)

	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.items[path]; ok {
		return entry.img, entry.err
	}
	c.items[path] = &cacheEntry{img: img, err: err}
	return img, err
}

// Len returns the number of cached paths.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Cache) resolve(path string) string {
	if c.index == nil {
		return path
	}
	if _, err := os.Stat(path); err == nil {
		return path
	}
	if p, ok := c.index.ResolvePath(path); ok {
		return p
	}
	return path
}
