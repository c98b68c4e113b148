// internal/resolve/cache.go
package resolve

import (
	"sync"
)

// Cache is a read-through cache of resolved payloads keyed by endpoint id.
// Entries are evicted synchronously whenever the endpoint or its underlying
// template/schema/entries are written; there is no time-based expiry.
type Cache struct {
	mutex    sync.RWMutex
	payloads map[string][]byte
}

func NewCache() *Cache {
	return &Cache{
		payloads: make(map[string][]byte),
	}
}

// Get returns the cached payload for an endpoint, if any.
func (c *Cache) Get(endpointID string) ([]byte, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	payload, ok := c.payloads[endpointID]
	return payload, ok
}

// Set stores a resolved payload.
func (c *Cache) Set(endpointID string, payload []byte) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.payloads[endpointID] = payload
}

// Invalidate evicts a single endpoint's payload.
func (c *Cache) Invalidate(endpointID string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.payloads, endpointID)
}

// InvalidateAll empties the cache.
func (c *Cache) InvalidateAll() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.payloads = make(map[string][]byte)
}
