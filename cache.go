package i18n

import (
	"strconv"
	"sync"
)

// ResultCache stores fully resolved strings. Implementations must be safe
// for concurrent use: every lookup, insert, eviction and invalidation is an
// atomic unit, so a bulk eviction is never observed half-applied.
type ResultCache interface {
	// Get returns the cached value for locale/key.
	Get(locale, key string) (string, bool)
	// Set stores value under locale/key.
	Set(locale, key, value string)
	// InvalidateLocale drops every entry belonging to locale.
	InvalidateLocale(locale string)
}

const cacheKeySep = "\x1f"

// MemoryCache is the bounded in-process ResultCache the engine uses by
// default. An insert into a full cache first evicts a contiguous block of
// the oldest entries: a quarter of capacity, and at least one entry when
// capacity is four or less.
type MemoryCache struct {
	mu       sync.RWMutex
	capacity int
	entries  map[string]string
	order    []cacheSlot
}

type cacheSlot struct {
	locale string
	key    string
}

var _ ResultCache = (*MemoryCache)(nil)

// NewMemoryCache builds a MemoryCache holding at most capacity entries.
func NewMemoryCache(capacity int) (*MemoryCache, error) {
	if capacity <= 0 {
		return nil, &ConfigError{Msg: "cache capacity must be positive, got " + strconv.Itoa(capacity)}
	}
	return &MemoryCache{
		capacity: capacity,
		entries:  make(map[string]string, capacity),
	}, nil
}

func (c *MemoryCache) Get(locale, key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.entries[locale+cacheKeySep+key]
	return value, ok
}

func (c *MemoryCache) Set(locale, key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	mapKey := locale + cacheKeySep + key
	if _, ok := c.entries[mapKey]; ok {
		c.entries[mapKey] = value
		return
	}

	if len(c.entries) >= c.capacity {
		c.evictOldestBlock()
	}
	c.entries[mapKey] = value
	c.order = append(c.order, cacheSlot{locale: locale, key: key})
}

// evictOldestBlock removes the oldest quarter of capacity in one sweep.
// Callers hold the write lock.
func (c *MemoryCache) evictOldestBlock() {
	n := c.capacity / 4
	if n < 1 {
		n = 1
	}
	if n > len(c.order) {
		n = len(c.order)
	}
	for _, slot := range c.order[:n] {
		delete(c.entries, slot.locale+cacheKeySep+slot.key)
	}
	c.order = append(c.order[:0], c.order[n:]...)
}

func (c *MemoryCache) InvalidateLocale(locale string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.order[:0]
	for _, slot := range c.order {
		if slot.locale == locale {
			delete(c.entries, slot.locale+cacheKeySep+slot.key)
			continue
		}
		kept = append(kept, slot)
	}
	c.order = kept
}

// Len reports the number of stored entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
