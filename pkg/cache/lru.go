// Package cache memoizes finished scoring results within one process.
package cache

import (
	"sync"
	"sync/atomic"
)

// DefaultEntries is the default maximum number of cached results.
const DefaultEntries = 128

// ResultCache is an LRU cache of finished results keyed by Fingerprint.
// It is bounded by entry count and safe for concurrent use.
type ResultCache[V any] struct {
	mu         sync.RWMutex
	entries    map[uint64]*lruEntry[V]
	head       *lruEntry[V] // Most recently used.
	tail       *lruEntry[V] // Least recently used.
	maxEntries int

	// Metrics (atomic for lock-free reads).
	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// lruEntry is a doubly-linked list node for LRU tracking.
type lruEntry[V any] struct {
	key   uint64
	value V
	prev  *lruEntry[V]
	next  *lruEntry[V]
}

// New creates a cache holding at most maxEntries results.
// A non-positive maxEntries selects DefaultEntries.
func New[V any](maxEntries int) *ResultCache[V] {
	if maxEntries <= 0 {
		maxEntries = DefaultEntries
	}

	return &ResultCache[V]{
		entries:    make(map[uint64]*lruEntry[V]),
		maxEntries: maxEntries,
	}
}

// Get returns the value stored under key and marks it most recently used.
func (c *ResultCache[V]) Get(key uint64) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)

		var zero V

		return zero, false
	}

	c.hits.Add(1)
	c.moveToFront(entry)

	return entry.value, true
}

// Put stores value under key, evicting the least recently used entry when
// the cache is full. An existing entry is replaced.
func (c *ResultCache[V]) Put(key uint64, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[key]; ok {
		entry.value = value
		c.moveToFront(entry)

		return
	}

	for len(c.entries) >= c.maxEntries && c.tail != nil {
		c.evictTail()
	}

	entry := &lruEntry[V]{key: key, value: value}

	c.entries[key] = entry
	c.addToFront(entry)
}

// Len returns the number of cached entries.
func (c *ResultCache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Stats returns cache statistics.
func (c *ResultCache[V]) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Stats{
		Hits:       c.hits.Load(),
		Misses:     c.misses.Load(),
		Evictions:  c.evictions.Load(),
		Entries:    len(c.entries),
		MaxEntries: c.maxEntries,
	}
}

// Stats holds cache performance metrics.
type Stats struct {
	Hits       int64
	Misses     int64
	Evictions  int64
	Entries    int
	MaxEntries int
}

// HitRate returns the cache hit rate (0.0 to 1.0).
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0.0
	}

	return float64(s.Hits) / float64(total)
}

// moveToFront moves an entry to the front of the LRU list (most recently used).
func (c *ResultCache[V]) moveToFront(entry *lruEntry[V]) {
	if entry == c.head {
		return
	}

	c.removeFromList(entry)
	c.addToFront(entry)
}

// addToFront adds an entry to the front of the LRU list.
func (c *ResultCache[V]) addToFront(entry *lruEntry[V]) {
	entry.prev = nil
	entry.next = c.head

	if c.head != nil {
		c.head.prev = entry
	}

	c.head = entry

	if c.tail == nil {
		c.tail = entry
	}
}

// removeFromList removes an entry from the LRU list.
func (c *ResultCache[V]) removeFromList(entry *lruEntry[V]) {
	if entry.prev != nil {
		entry.prev.next = entry.next
	} else {
		c.head = entry.next
	}

	if entry.next != nil {
		entry.next.prev = entry.prev
	} else {
		c.tail = entry.prev
	}
}

// evictTail removes the least recently used entry.
func (c *ResultCache[V]) evictTail() {
	victim := c.tail

	c.removeFromList(victim)
	delete(c.entries, victim.key)
	c.evictions.Add(1)
}
