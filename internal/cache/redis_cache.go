package cache

import (
	"context"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const saleListPrefix = "sellpoint:sales:list:"

// RedisSaleListCache backs the sale-list cache with Redis.
type RedisSaleListCache struct {
	client *redis.Client
}

func NewRedisSaleListCache(addr, password string, db int) *RedisSaleListCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisSaleListCache{client: client}
}

func (c *RedisSaleListCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisSaleListCache) Close() error {
	return c.client.Close()
}

func (c *RedisSaleListCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, saleListPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (c *RedisSaleListCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	return c.client.Set(ctx, saleListPrefix+key, payload, ttl).Err()
}

// Invalidate deletes every cached list page. SCAN keeps this safe on a shared
// Redis instance.
func (c *RedisSaleListCache) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, saleListPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
