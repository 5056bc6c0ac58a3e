package memory

import (
	"context"
	"sync"

	"github.com/menta2k/quickcrop/pkg/types"
)

// Cache is an in-process BoxCache.
type Cache struct {
	mu    sync.RWMutex
	boxes map[string]types.Box
}

// New creates an empty in-memory cache
func New() *Cache {
	return &Cache{boxes: make(map[string]types.Box)}
}

func (c *Cache) Get(_ context.Context, key string) (types.Box, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	box, ok := c.boxes[key]
	return box, ok, nil
}

func (c *Cache) Set(_ context.Context, key string, box types.Box) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.boxes[key] = box
	return nil
}

// Len returns the number of cached boxes.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.boxes)
}
