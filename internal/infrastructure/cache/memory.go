package cache

import (
	"storefront-backend/pkg/cache"
	"storefront-backend/pkg/logger"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

type memoryCache struct {
	store *gocache.Cache
}

// NewMemoryCache creates an in-process cache. Cancellation quotes live here
// until submitted or expired, so a restart discards outstanding quotes.
// cleanupInterval controls how often expired entries are swept.
func NewMemoryCache(defaultExpiration, cleanupInterval time.Duration) cache.CacheService {
	store := gocache.New(defaultExpiration, cleanupInterval)
	store.OnEvicted(func(key string, _ interface{}) {
		logger.Debug().Str("key", key).Msg("Cache: entry evicted")
	})
	return &memoryCache{store: store}
}

func (c *memoryCache) Get(key string) (interface{}, bool) {
	return c.store.Get(key)
}

func (c *memoryCache) Set(key string, value interface{}, duration time.Duration) {
	if duration <= 0 {
		duration = gocache.DefaultExpiration
	}
	c.store.Set(key, value, duration)
}

func (c *memoryCache) Delete(key string) {
	c.store.Delete(key)
}

func (c *memoryCache) Flush() {
	c.store.Flush()
}
