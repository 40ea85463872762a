package provider

import (
	"container/list"
	"sync"
	"time"
)

// CacheStats represents cache performance metrics
type CacheStats struct {
	Size        int           `json:"size"`
	MaxSize     int           `json:"max_size"`
	Hits        int64         `json:"hits"`
	Misses      int64         `json:"misses"`
	Evictions   int64         `json:"evictions"`
	TTLExpiries int64         `json:"ttl_expiries"`
	HitRatio    float64       `json:"hit_ratio"`
	TTL         time.Duration `json:"ttl"`
}

type cacheEntry[V any] struct {
	key         string
	value       V
	createdAt   time.Time
	listElement *list.Element
}

// Cache is an in-memory LRU cache whose entries expire after a fixed TTL. It is safe for
// concurrent use.
type Cache[V any] struct {
	entries     map[string]*cacheEntry[V]
	accessOrder *list.List // most recent at front
	maxSize     int
	ttl         time.Duration
	now         func() time.Time
	mu          sync.Mutex

	hits        int64
	misses      int64
	evictions   int64
	ttlExpiries int64
}

// NewCache creates a cache holding at most maxSize entries. A ttl of 0 never expires entries.
func NewCache[V any](maxSize int, ttl time.Duration) *Cache[V] {
	if maxSize < 1 {
		maxSize = 1
	}
	return &Cache[V]{
		entries:     make(map[string]*cacheEntry[V]),
		accessOrder: list.New(),
		maxSize:     maxSize,
		ttl:         ttl,
		now:         time.Now,
	}
}

// Get returns the value stored under key
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	entry, exists := c.entries[key]
	if !exists {
		c.misses++
		return zero, false
	}

	if c.expired(entry) {
		c.deleteEntryUnsafe(entry)
		c.ttlExpiries++
		c.misses++
		return zero, false
	}

	c.accessOrder.MoveToFront(entry.listElement)
	c.hits++
	return entry.value, true
}

// Set stores value under key, evicting the least recently used entry when full
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if existing, exists := c.entries[key]; exists {
		existing.value = value
		existing.createdAt = now
		c.accessOrder.MoveToFront(existing.listElement)
		return
	}

	if len(c.entries) >= c.maxSize {
		c.evictLRUUnsafe()
	}

	entry := &cacheEntry[V]{key: key, value: value, createdAt: now}
	entry.listElement = c.accessOrder.PushFront(entry)
	c.entries[key] = entry
}

// Stats returns cache statistics
func (c *Cache[V]) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	hitRatio := 0.0
	if total := c.hits + c.misses; total > 0 {
		hitRatio = float64(c.hits) / float64(total)
	}

	return CacheStats{
		Size:        len(c.entries),
		MaxSize:     c.maxSize,
		Hits:        c.hits,
		Misses:      c.misses,
		Evictions:   c.evictions,
		TTLExpiries: c.ttlExpiries,
		HitRatio:    hitRatio,
		TTL:         c.ttl,
	}
}

func (c *Cache[V]) expired(entry *cacheEntry[V]) bool {
	return c.ttl > 0 && c.now().Sub(entry.createdAt) > c.ttl
}

// must be called with the lock held
func (c *Cache[V]) evictLRUUnsafe() {
	lru := c.accessOrder.Back()
	if lru == nil {
		return
	}
	c.deleteEntryUnsafe(lru.Value.(*cacheEntry[V]))
	c.evictions++
}

// must be called with the lock held
func (c *Cache[V]) deleteEntryUnsafe(entry *cacheEntry[V]) {
	delete(c.entries, entry.key)
	if entry.listElement != nil {
		c.accessOrder.Remove(entry.listElement)
	}
}
