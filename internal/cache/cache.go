// Package cache provides a small generic memoization cache used for
// per-format vertex decoders. Unlike an LRU, entries are never evicted
// individually: the format space is finite and decoders are cheap to hold,
// so the cache only ever grows until Clear wipes it wholesale (on context
// loss or viewport resize).
package cache

import "sync"

// Cache memoizes values by comparable key.
//
// Cache is safe for concurrent use and must not be copied after creation.
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]V

	hits   uint64
	misses uint64
}

// New creates an empty cache.
func New[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{
		entries: make(map[K]V),
	}
}

// GetOrCreate returns the cached value for key, calling create to build it on
// first use. create runs under the cache lock so a key is built exactly once.
func (c *Cache[K, V]) GetOrCreate(key K, create func() V) V {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.entries[key]; ok {
		c.hits++
		return v
	}

	c.misses++
	v := create()
	c.entries[key] = v
	return v
}

// Lookup returns the cached value for key without creating one.
func (c *Cache[K, V]) Lookup(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.entries[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return v, ok
}

// Clear discards every entry. Hit/miss counters survive so observers can
// still account for work across context invalidations.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.entries)
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Stats reports cumulative hit/miss counts.
func (c *Cache[K, V]) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.hits, c.misses
}
