package cache

import (
	"fmt"
	"strings"
	"sync"
)

// Counters tracks per-key cache hits and misses in first-seen order.
type Counters struct {
	mu     sync.Mutex
	order  []string
	hits   map[string]int
	misses map[string]int
}

// NewCounters returns empty counters.
func NewCounters() *Counters {
	return &Counters{
		hits:   make(map[string]int),
		misses: make(map[string]int),
	}
}

// Hit records a cache hit for key.
func (c *Counters) Hit(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.track(key)
	c.hits[key]++
}

// Miss records a cache miss for key.
func (c *Counters) Miss(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.track(key)
	c.misses[key]++
}

func (c *Counters) track(key string) {
	if _, ok := c.hits[key]; ok {
		return
	}
	if _, ok := c.misses[key]; ok {
		return
	}
	c.order = append(c.order, key)
	c.hits[key] = 0
}

// Counts returns the hits and misses recorded for key.
func (c *Counters) Counts(key string) (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits[key], c.misses[key]
}

// Report renders the counters as a fixed-width table:
//
//	 reference  |     hits |   misses |    total
//	*********************************************
//	 1:0        |       10 |        3 |       13
func (c *Counters) Report() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var b strings.Builder
	header := fmt.Sprintf(" %-10s | %8s | %8s | %8s \n", "reference", "hits", "misses", "total")
	b.WriteString(header)
	b.WriteString(strings.Repeat("*", len(header)-1))
	b.WriteString("\n")
	for _, key := range c.order {
		h, m := c.hits[key], c.misses[key]
		fmt.Fprintf(&b, " %-10s | %8d | %8d | %8d \n", key, h, m, h+m)
	}
	return b.String()
}
