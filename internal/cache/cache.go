package cache

import (
	"context"

	"github.com/creditledger/creditledger/internal/config"
	"github.com/creditledger/creditledger/internal/logger"
	redisclient "github.com/creditledger/creditledger/internal/redis"
)

// Cache is a read-through cache for ledger lookups. Implementations may
// store typed values (in-memory) or JSON strings (Redis); callers go
// through UnmarshalCacheValue to absorb the difference.
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, bool)
	Set(ctx context.Context, key string, value interface{})
	Delete(ctx context.Context, key string)
}

// CacheType represents the type of cache to use
type CacheType string

const (
	CacheTypeInMemory CacheType = "inmemory"
	CacheTypeRedis    CacheType = "redis"
)

// Initialize builds the cache selected by configuration. The Redis cache
// shares the application's Redis connection.
func Initialize(cfg *config.Configuration, client *redisclient.Client, log *logger.Logger) Cache {
	log.Infow("initializing cache", "type", cfg.Cache.Type)

	switch CacheType(cfg.Cache.Type) {
	case CacheTypeRedis:
		return NewRedisCache(client, log)
	default:
		return NewInMemoryCache()
	}
}
