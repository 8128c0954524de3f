// Package cache holds previously computed translations in a bounded LRU
// store keyed by (text, target language, source language).
package cache

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCapacity bounds the cache when no explicit capacity is configured.
const DefaultCapacity = 512

// Key identifies one translation. Text and language codes are expected to be
// normalized by the caller before lookup so that equivalent requests collide.
type Key struct {
	Text       string
	TargetLang string
	SourceLang string
}

// Entry is a stored translation plus its insertion time.
type Entry struct {
	Key        Key
	Value      string
	InsertedAt time.Time
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Size   int     `json:"size"`
	Hits   uint64  `json:"hits"`
	Misses uint64  `json:"misses"`
	// HitRate is hits / (hits + misses) since the last Clear, 0 when idle.
	HitRate float64 `json:"hit_rate"`
}

type record struct {
	value      string
	insertedAt time.Time
}

// Cache is a goroutine-safe translation cache with LRU eviction.
// A missing key is a normal miss, never an error.
type Cache struct {
	mu      sync.Mutex
	entries *lru.Cache[Key, record]
	hits    uint64
	misses  uint64
	now     func() time.Time
}

// New builds a cache bounded to capacity entries. Non-positive capacities
// fall back to DefaultCapacity.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	entries, err := lru.New[Key, record](capacity)
	if err != nil {
		// lru.New only fails on non-positive sizes, which are normalized above.
		panic(err)
	}
	return &Cache{
		entries: entries,
		now:     time.Now,
	}
}

// Get returns the most recently stored value for key and whether it exists.
func (c *Cache) Get(key Key) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.entries.Get(key)
	if !ok {
		c.misses++
		return "", false
	}
	c.hits++
	return rec.value, true
}

// Set inserts or overwrites the value for key, evicting the least recently
// used entry when the cache is full.
func (c *Cache) Set(key Key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries.Add(key, record{value: value, insertedAt: c.now()})
}

// Contains reports whether key is cached without counting a hit or miss and
// without refreshing its recency.
func (c *Cache) Contains(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Contains(key)
}

// Clear drops every entry and resets the hit/miss counters.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries.Purge()
	c.hits = 0
	c.misses = 0
}

// Len returns the number of stored entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := Stats{
		Size:   c.entries.Len(),
		Hits:   c.hits,
		Misses: c.misses,
	}
	if total := c.hits + c.misses; total > 0 {
		stats.HitRate = float64(c.hits) / float64(total)
	}
	return stats
}

// Entries lists the cached translations from least to most recently used.
func (c *Cache) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := c.entries.Keys()
	items := make([]Entry, 0, len(keys))
	for _, key := range keys {
		rec, ok := c.entries.Peek(key)
		if !ok {
			continue
		}
		items = append(items, Entry{
			Key:        key,
			Value:      rec.value,
			InsertedAt: rec.insertedAt,
		})
	}
	return items
}
