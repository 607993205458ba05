// Package identity provides the process-wide identity map: at most one live
// entity instance per (type, identifier) is ever handed to callers. It is a
// correctness mechanism, not a performance cache — entries are never evicted.
package identity

import (
	"fmt"
	"reflect"
	"sync"
)

type key struct {
	entityType reflect.Type
	id         any
}

// Cache maps (entity type, identifier) to the canonical live instance.
// Safe for concurrent use; reads dominate, writes happen on persistence.
type Cache struct {
	mu      sync.RWMutex
	entries map[key]any
}

// NewCache creates an empty identity cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[key]any),
	}
}

// Contains reports whether a canonical instance exists for (entityType, id).
func (c *Cache) Contains(entityType reflect.Type, id any) bool {
	_, ok := c.Get(entityType, id)
	return ok
}

// Get returns the canonical instance for (entityType, id).
func (c *Cache) Get(entityType reflect.Type, id any) (any, bool) {
	k := key{entityType, normalizeID(id)}
	c.mu.RLock()
	defer c.mu.RUnlock()
	entity, ok := c.entries[k]
	return entity, ok
}

// Add stores entity for (entityType, id) unless an instance is already
// cached, and returns the canonical instance either way. Concurrent
// hydrations of the same row converge on a single object through this path.
func (c *Cache) Add(entityType reflect.Type, id any, entity any) any {
	k := key{entityType, normalizeID(id)}
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[k]; ok {
		return existing
	}
	c.entries[k] = entity
	return entity
}

// Replace unconditionally installs entity as the canonical instance,
// guaranteeing the cache never serves a pre-update copy.
func (c *Cache) Replace(entityType reflect.Type, id any, entity any) {
	k := key{entityType, normalizeID(id)}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[k] = entity
}

// Remove drops the entry for (entityType, id), if any.
func (c *Cache) Remove(entityType reflect.Type, id any) {
	k := key{entityType, normalizeID(id)}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, k)
}

// Len returns the number of cached instances.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// normalizeID folds equivalent identifier representations into one key form:
// integer kinds become int64 so that int32(7) and int64(7) address the same
// entry, everything else keys on its invariant string form.
func normalizeID(id any) any {
	switch v := id.(type) {
	case int:
		return int64(v)
	case int8:
		return int64(v)
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	case uint:
		return int64(v)
	case uint8:
		return int64(v)
	case uint16:
		return int64(v)
	case uint32:
		return int64(v)
	case uint64:
		return int64(v)
	default:
		return fmt.Sprint(v)
	}
}
