package cache

import (
	"context"

	gocache "github.com/patrickmn/go-cache"
)

// InMemoryCache implements Cache on top of go-cache.
type InMemoryCache struct {
	store *gocache.Cache
}

// NewInMemoryCache creates an in-memory cache with the default expiry and
// a cleanup sweep at twice that interval.
func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{
		store: gocache.New(ExpiryDefaultInMemory, 2*ExpiryDefaultInMemory),
	}
}

func (c *InMemoryCache) Get(_ context.Context, key string) (interface{}, bool) {
	return c.store.Get(key)
}

func (c *InMemoryCache) Set(_ context.Context, key string, value interface{}) {
	c.store.Set(key, value, ExpiryDefaultInMemory)
}

func (c *InMemoryCache) Delete(_ context.Context, key string) {
	c.store.Delete(key)
}
