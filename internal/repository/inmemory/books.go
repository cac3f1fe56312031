package inmemory

import (
	"sync"
	"time"

	booksdomain "book-club-go/internal/domain/books"
)

// InMemorySearchCache holds catalog search results until they expire.
type InMemorySearchCache struct {
	mu    sync.RWMutex
	items map[string]searchItem
	now   func() time.Time
}

type searchItem struct {
	value     []booksdomain.Metadata
	expiresAt time.Time
}

func NewInMemorySearchCache() *InMemorySearchCache {
	return &InMemorySearchCache{
		items: make(map[string]searchItem),
		now:   time.Now,
	}
}

func (c *InMemorySearchCache) Get(key string) ([]booksdomain.Metadata, bool) {
	now := c.now()

	c.mu.RLock()
	item, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if !item.expiresAt.After(now) {
		c.mu.Lock()
		item, ok = c.items[key]
		if ok && !item.expiresAt.After(now) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return nil, false
	}

	value := make([]booksdomain.Metadata, len(item.value))
	copy(value, item.value)
	return value, true
}

func (c *InMemorySearchCache) Set(key string, results []booksdomain.Metadata, ttl time.Duration) {
	if ttl <= 0 {
		c.Delete(key)
		return
	}

	value := make([]booksdomain.Metadata, len(results))
	copy(value, results)

	c.mu.Lock()
	c.items[key] = searchItem{
		value:     value,
		expiresAt: c.now().Add(ttl),
	}
	c.mu.Unlock()
}

func (c *InMemorySearchCache) Delete(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

func (c *InMemorySearchCache) Clear() {
	c.mu.Lock()
	c.items = make(map[string]searchItem)
	c.mu.Unlock()
}
