// Package cachesvc implements core.Cache on redis and in memory.
package cachesvc

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/thinkwise/core"
)

type redisCache struct {
	client *redis.Client
}

var _ core.Cache = (*redisCache)(nil)

// NewRedisCache connects to the redis server at url, like "redis://:password@localhost:6379/0".
func NewRedisCache(ctx context.Context, url string) (core.Cache, func() error, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, nil, errors.Wrap(err, "parsing redis url")
	}
	client := redis.NewClient(opts)
	if err = client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, errors.Wrap(err, "connecting to redis")
	}
	return &redisCache{client: client}, client.Close, nil
}

func (c *redisCache) Get(ctx context.Context, key string, dst interface{}) (bool, error) {
	b, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "getting cache key")
	}
	if err = json.Unmarshal(b, dst); err != nil {
		return false, errors.Wrap(err, "decoding cache value")
	}
	return true, nil
}

func (c *redisCache) Set(ctx context.Context, key string, val interface{}, ttl time.Duration) error {
	b, err := json.Marshal(val)
	if err != nil {
		return errors.Wrap(err, "encoding cache value")
	}
	return errors.Wrap(c.client.Set(ctx, key, b, ttl).Err(), "setting cache key")
}

func (c *redisCache) DeletePrefix(ctx context.Context, prefix string) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			return errors.Wrap(err, "scanning cache keys")
		}
		if len(keys) > 0 {
			if err = c.client.Del(ctx, keys...).Err(); err != nil {
				return errors.Wrap(err, "deleting cache keys")
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}
