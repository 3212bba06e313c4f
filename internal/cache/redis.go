package cache

import (
	"context"
	"encoding/json"

	"github.com/creditledger/creditledger/internal/logger"
	redisclient "github.com/creditledger/creditledger/internal/redis"
	goredis "github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "cache:"

// RedisCache implements Cache on the shared Redis connection. Values are
// stored as JSON strings.
type RedisCache struct {
	client *redisclient.Client
	log    *logger.Logger
}

func NewRedisCache(client *redisclient.Client, log *logger.Logger) *RedisCache {
	return &RedisCache{client: client, log: log}
}

func (c *RedisCache) Get(ctx context.Context, key string) (interface{}, bool) {
	raw, err := c.client.GetClient().Get(ctx, cacheKeyPrefix+key).Result()
	if err == goredis.Nil {
		return nil, false
	}
	if err != nil {
		c.log.Warnw("redis cache get failed", "key", key, "error", err)
		return nil, false
	}
	return raw, true
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		c.log.Warnw("redis cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.GetClient().Set(ctx, cacheKeyPrefix+key, raw, ExpiryDefaultRedis).Err(); err != nil {
		c.log.Warnw("redis cache set failed", "key", key, "error", err)
	}
}

func (c *RedisCache) Delete(ctx context.Context, key string) {
	if err := c.client.GetClient().Del(ctx, cacheKeyPrefix+key).Err(); err != nil {
		c.log.Warnw("redis cache delete failed", "key", key, "error", err)
	}
}
