package cache

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// DefaultMaxSize bounds the cache when no capacity is configured.
const DefaultMaxSize = 500

// Entry is a stored value with its creation time and lifetime. Entries
// are immutable once created; overwriting a key replaces the entry.
type Entry struct {
	Key       string
	Payload   interface{}
	CreatedAt time.Time
	TTL       time.Duration
}

// Stats holds cache counters
type Stats struct {
	Size      int     `json:"size"`
	MaxSize   int     `json:"max_size"`
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Evictions int64   `json:"evictions"`
	Expired   int64   `json:"expired"`
	HitRate   float64 `json:"hit_rate"`
}

// DataCache is an in-memory TTL key/value store with a capacity bound.
// When an insert would exceed the bound, the single entry with the
// smallest CreatedAt is evicted first. Expiry is lazy: an entry older
// than its TTL is removed on the read that finds it.
type DataCache struct {
	mu        sync.RWMutex
	entries   map[string]*Entry
	maxSize   int
	clk       clock.Clock
	hits      int64
	misses    int64
	evictions int64
	expired   int64
}

// New creates a cache with the given capacity. A non-positive maxSize
// falls back to DefaultMaxSize.
func New(maxSize int) *DataCache {
	return NewWithClock(maxSize, clock.New())
}

// NewWithClock creates a cache driven by the supplied clock.
func NewWithClock(maxSize int, clk clock.Clock) *DataCache {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &DataCache{
		entries: make(map[string]*Entry),
		maxSize: maxSize,
		clk:     clk,
	}
}

// Get returns the payload for key if present and within TTL. An entry
// whose age exceeds its TTL is deleted and reported as a miss.
func (c *DataCache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}

	if c.clk.Now().Sub(entry.CreatedAt) > entry.TTL {
		delete(c.entries, key)
		c.expired++
		c.misses++
		return nil, false
	}

	c.hits++
	return entry.Payload, true
}

// Set stores payload under key with the given lifetime. If the cache
// is at capacity and key is not already present, the oldest entry by
// CreatedAt is evicted to make room.
func (c *DataCache) Set(key string, payload interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	c.entries[key] = &Entry{
		Key:       key,
		Payload:   payload,
		CreatedAt: c.clk.Now(),
		TTL:       ttl,
	}
}

// Has reports whether key holds a live entry. Unlike Get it does not
// count toward hit/miss stats, but it does reap an expired entry.
func (c *DataCache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return false
	}
	if c.clk.Now().Sub(entry.CreatedAt) > entry.TTL {
		delete(c.entries, key)
		c.expired++
		return false
	}
	return true
}

// Delete removes key if present.
func (c *DataCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear removes all entries. Counters are kept.
func (c *DataCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*Entry)
}

// Len returns the number of stored entries, live or not yet reaped.
func (c *DataCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// GetStats returns a snapshot of cache counters.
func (c *DataCache) GetStats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := Stats{
		Size:      len(c.entries),
		MaxSize:   c.maxSize,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Expired:   c.expired,
	}
	if total := c.hits + c.misses; total > 0 {
		stats.HitRate = float64(c.hits) / float64(total)
	}
	return stats
}

// evictOldest removes the entry with the smallest CreatedAt.
// Caller must hold the write lock.
func (c *DataCache) evictOldest() {
	var oldestKey string
	var oldestAt time.Time
	first := true

	for key, entry := range c.entries {
		if first || entry.CreatedAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = entry.CreatedAt
			first = false
		}
	}

	if !first {
		delete(c.entries, oldestKey)
		c.evictions++
	}
}
