package services

import "sync"

// pathCache maps rendered document paths to host document IDs for the
// duration of a single sync run. It exists so that a run which creates
// a merge bucket and then appends ten more items to it resolves the
// bucket once, not eleven times. Cleared at the start of every run:
// paths are only trustworthy while no other writer touches the host.
type pathCache struct {
	mu  sync.RWMutex
	ids map[string]string
}

func newPathCache() *pathCache {
	return &pathCache{ids: make(map[string]string)}
}

// Get returns the cached ID for a path.
func (c *pathCache) Get(path string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.ids[path]
	return id, ok
}

// Put records the ID resolved for a path.
func (c *pathCache) Put(path, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids[path] = id
}

// Clear drops all cached entries.
func (c *pathCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids = make(map[string]string)
}
