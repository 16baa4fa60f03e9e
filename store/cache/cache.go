package cache

import (
	"context"
	"sync"
	"time"
)

// Config holds the settings of an in-memory cache.
type Config struct {
	// DefaultTTL is used by Set. Zero means entries never expire.
	DefaultTTL time.Duration
	// CleanupInterval is how often expired entries are swept. Zero disables the sweeper.
	CleanupInterval time.Duration
	// MaxItems bounds the number of entries. Zero means unbounded.
	MaxItems int
	// OnEviction is called for every entry removed by expiry or capacity.
	OnEviction func(key string, value any)
}

type item struct {
	value     any
	expiresAt time.Time
}

func (i item) expired(now time.Time) bool {
	return !i.expiresAt.IsZero() && now.After(i.expiresAt)
}

// Cache is a TTL and size bounded in-memory cache safe for concurrent use.
type Cache struct {
	mu     sync.RWMutex
	items  map[string]item
	config Config

	done      chan struct{}
	closeOnce sync.Once
}

// New creates a cache and starts its cleanup goroutine.
func New(config Config) *Cache {
	c := &Cache{
		items:  make(map[string]item),
		config: config,
		done:   make(chan struct{}),
	}
	if config.CleanupInterval > 0 {
		go c.cleanupLoop(config.CleanupInterval)
	}
	return c
}

// Get returns a live entry.
func (c *Cache) Get(_ context.Context, key string) (any, bool) {
	c.mu.RLock()
	it, ok := c.items[key]
	c.mu.RUnlock()
	if !ok || it.expired(time.Now()) {
		return nil, false
	}
	return it.value, true
}

// Set stores value with the default TTL.
func (c *Cache) Set(ctx context.Context, key string, value any) {
	c.SetWithTTL(ctx, key, value, c.config.DefaultTTL)
}

// SetWithTTL stores value with an explicit TTL. A zero TTL never expires.
func (c *Cache) SetWithTTL(_ context.Context, key string, value any, ttl time.Duration) {
	it := item{value: value}
	if ttl > 0 {
		it.expiresAt = time.Now().Add(ttl)
	}

	var evicted []evictedItem
	c.mu.Lock()
	if _, exists := c.items[key]; !exists && c.config.MaxItems > 0 && len(c.items) >= c.config.MaxItems {
		evicted = c.evictLocked(time.Now())
	}
	c.items[key] = it
	c.mu.Unlock()

	c.notify(evicted)
}

// Delete removes an entry.
func (c *Cache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// Clear removes every entry.
func (c *Cache) Clear(_ context.Context) {
	c.mu.Lock()
	c.items = make(map[string]item)
	c.mu.Unlock()
}

// Size returns the number of stored entries, expired ones included until swept.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Close stops the cleanup goroutine.
func (c *Cache) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

type evictedItem struct {
	key   string
	value any
}

// evictLocked drops expired entries, or the entry closest to expiry when
// none have expired. Entries without a TTL go last.
func (c *Cache) evictLocked(now time.Time) []evictedItem {
	var evicted []evictedItem
	for key, it := range c.items {
		if it.expired(now) {
			evicted = append(evicted, evictedItem{key, it.value})
			delete(c.items, key)
		}
	}
	if len(evicted) > 0 {
		return evicted
	}

	var (
		victim     string
		victimItem item
		found      bool
	)
	for key, it := range c.items {
		if !found || earlier(it, victimItem) {
			victim, victimItem, found = key, it, true
		}
	}
	if found {
		delete(c.items, victim)
		evicted = append(evicted, evictedItem{victim, victimItem.value})
	}
	return evicted
}

func earlier(a, b item) bool {
	switch {
	case a.expiresAt.IsZero():
		return false
	case b.expiresAt.IsZero():
		return true
	default:
		return a.expiresAt.Before(b.expiresAt)
	}
}

func (c *Cache) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.deleteExpired()
		case <-c.done:
			return
		}
	}
}

func (c *Cache) deleteExpired() {
	now := time.Now()
	var evicted []evictedItem
	c.mu.Lock()
	for key, it := range c.items {
		if it.expired(now) {
			evicted = append(evicted, evictedItem{key, it.value})
			delete(c.items, key)
		}
	}
	c.mu.Unlock()
	c.notify(evicted)
}

func (c *Cache) notify(evicted []evictedItem) {
	if c.config.OnEviction == nil {
		return
	}
	for _, e := range evicted {
		c.config.OnEviction(e.key, e.value)
	}
}
