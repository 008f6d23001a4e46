package cachesvc

import (
	"sync"
	"time"

	"github.com/kipawa/jaribio/core"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// MemoryCache is a process-local key/value store with per-entry expiry.
// It is safe for concurrent use. Entries are evicted lazily on Get and
// periodically by an optional janitor; an expired entry behaves exactly
// like an absent one either way.
//
// In multi-process deployments each process holds its own MemoryCache, so a
// write handled by one process leaves the others' entries in place until
// their TTL runs out. That staleness window is bounded by the TTL.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry

	nowFunc func() time.Time // mockable
	done    chan struct{}
	once    sync.Once
}

var _ core.Cache = (*MemoryCache)(nil)

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]entry),
		nowFunc: time.Now,
		done:    make(chan struct{}),
	}
}

// StartJanitor evicts expired entries every interval until Stop is called.
// Optional; Get never returns expired values regardless.
func (c *MemoryCache) StartJanitor(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.evictExpired()
			case <-c.done:
				return
			}
		}
	}()
}

func (c *MemoryCache) Stop() {
	c.once.Do(func() { close(c.done) })
}

func (c *MemoryCache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	ent, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || ent.expired(c.nowFunc()) {
		return nil, false
	}
	return ent.value, true
}

func (c *MemoryCache) Set(key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[key] = entry{value: value, expiresAt: c.nowFunc().Add(ttl)}
	c.mu.Unlock()
}

func (c *MemoryCache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

func (c *MemoryCache) Flush() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

// Len counts the unexpired entries.
func (c *MemoryCache) Len() int {
	now := c.nowFunc()
	c.mu.RLock()
	defer c.mu.RUnlock()
	var n int
	for _, ent := range c.entries {
		if !ent.expired(now) {
			n++
		}
	}
	return n
}

func (c *MemoryCache) evictExpired() {
	now := c.nowFunc()
	c.mu.Lock()
	for key, ent := range c.entries {
		if ent.expired(now) {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}
