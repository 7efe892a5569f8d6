package cache

import "sync"

// SynchronizedCache guards another Cache with a mutex. Get takes the
// exclusive lock because an LRU read reorders entries.
type SynchronizedCache[K comparable, V any] struct {
	mu    sync.Mutex
	inner Cache[K, V]
}

// NewSynchronized wraps inner.
func NewSynchronized[K comparable, V any](inner Cache[K, V]) *SynchronizedCache[K, V] {
	return &SynchronizedCache[K, V]{inner: inner}
}

// Get returns the value stored under key.
func (s *SynchronizedCache[K, V]) Get(key K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Get(key)
}

// Set stores value under key.
func (s *SynchronizedCache[K, V]) Set(key K, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inner.Set(key, value)
}

// Delete removes key.
func (s *SynchronizedCache[K, V]) Delete(key K) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inner.Delete(key)
}

// Len returns the number of entries.
func (s *SynchronizedCache[K, V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Len()
}

// GetOrLoad returns the cached value or calls load while holding the lock
// and caches its result. The lock makes concurrent callers for the same key
// load once.
func (s *SynchronizedCache[K, V]) GetOrLoad(key K, load func() (V, error)) (V, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.inner.Get(key); ok {
		return v, nil
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	s.inner.Set(key, v)
	return v, nil
}
