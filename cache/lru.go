// Package cache provides the bounded caches used by the object hash.
//
// [LRU] is a fixed-capacity map with access-order eviction. It is not safe
// for concurrent use; wrap it in a [SynchronizedCache] when one document is
// shared between goroutines. [Counters] records hit/miss statistics and
// renders them as a fixed-width report table.
package cache

import "container/list"

// Cache is the interface satisfied by LRU and SynchronizedCache.
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Set(key K, value V)
	Delete(key K)
	Len() int
}

type lruEntry[K comparable, V any] struct {
	key   K
	value V
}

// LRU is a fixed-capacity least-recently-used cache.
type LRU[K comparable, V any] struct {
	capacity int
	order    *list.List // front is most recently used
	items    map[K]*list.Element
}

// NewLRU creates a cache holding at most capacity entries. A capacity
// below 1 is treated as 1.
func NewLRU[K comparable, V any](capacity int) *LRU[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	return &LRU[K, V]{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[K]*list.Element, capacity),
	}
}

// Get returns the value for key and marks it most recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	el, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*lruEntry[K, V]).value, true
}

// Set stores value under key, marks it most recently used and evicts the
// least recently used entry when over capacity.
func (c *LRU[K, V]) Set(key K, value V) {
	if el, ok := c.items[key]; ok {
		el.Value.(*lruEntry[K, V]).value = value
		c.order.MoveToFront(el)
		return
	}
	c.items[key] = c.order.PushFront(&lruEntry[K, V]{key: key, value: value})
	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*lruEntry[K, V]).key)
	}
}

// Delete removes key if present.
func (c *LRU[K, V]) Delete(key K) {
	if el, ok := c.items[key]; ok {
		c.order.Remove(el)
		delete(c.items, key)
	}
}

// Len returns the number of cached entries.
func (c *LRU[K, V]) Len() int {
	return c.order.Len()
}

// Capacity returns the maximum number of entries.
func (c *LRU[K, V]) Capacity() int {
	return c.capacity
}

// Keys returns the keys from most to least recently used.
func (c *LRU[K, V]) Keys() []K {
	keys := make([]K, 0, c.order.Len())
	for el := c.order.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Value.(*lruEntry[K, V]).key)
	}
	return keys
}
