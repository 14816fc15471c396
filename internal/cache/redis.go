package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/oggyb/skillswap/internal/config"
	svcErr "github.com/oggyb/skillswap/internal/errors"
	"github.com/oggyb/skillswap/internal/repository"
)

var _ repository.KV = (*RedisCache)(nil)

// RedisCache keeps the state layout in Redis, one string key per layout key.
// Keys carry no TTL: Redis is the durable medium here, not a cache in front of one.
type RedisCache struct {
	Client    *redis.Client
	namespace string
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts), namespace: cfg.Redis.Namespace}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

// Key maps a layout key to its namespaced Redis key, e.g. "skillswap:users".
func (c *RedisCache) Key(name string) string {
	if c.namespace == "" {
		return name
	}
	return fmt.Sprintf("%s:%s", c.namespace, name)
}

// Get returns the value stored under key; redis.Nil surfaces as errors.ErrNotFound.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.Client.Get(ctx, c.Key(key)).Bytes()
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return val, nil
}

// Apply writes the batch inside MULTI/EXEC so readers never see half of it.
func (c *RedisCache) Apply(ctx context.Context, b repository.Batch) error {
	_, err := c.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for key, value := range b.Set {
			pipe.Set(ctx, c.Key(key), value, 0)
		}
		if len(b.Delete) > 0 {
			keys := make([]string, len(b.Delete))
			for i, k := range b.Delete {
				keys[i] = c.Key(k)
			}
			pipe.Del(ctx, keys...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis batch: %w", err)
	}
	return nil
}

func (c *RedisCache) Close() error {
	return c.Client.Close()
}
