package odds

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// MarketCache guarda a lista convertida de partidas
type MarketCache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
}

// RedisCache implementa MarketCache no Redis
type RedisCache struct{ R *redis.Client }

func NewRedisCache(r *redis.Client) *RedisCache { return &RedisCache{R: r} }

func cacheKey(key string) string { return "odds:markets:" + key }

func (c *RedisCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, err := c.R.Get(ctx, cacheKey(key)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(b, dst)
}

func (c *RedisCache) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.R.Set(ctx, cacheKey(key), b, ttl).Err()
}
