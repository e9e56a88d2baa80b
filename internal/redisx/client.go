package redisx

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

func New(addr string) *redis.Client {
	r := redis.NewClient(&redis.Options{Addr: addr})
	_ = r.WithTimeout(2 * time.Second)
	return r
}

// Cache is a thin wrapper so callers don't depend on go-redis command types.
type Cache struct{ R *redis.Client }

func (c Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return c.R.Set(ctx, key, value, ttl).Err()
}

// SetNX stores the value only if the key is absent. Returns true when this
// call created the key.
func (c Cache) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	return c.R.SetNX(ctx, key, value, ttl).Result()
}

func (c Cache) Get(ctx context.Context, key string) (string, error) {
	s, err := c.R.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return s, err
}

func (c Cache) Del(ctx context.Context, keys ...string) error {
	return c.R.Del(ctx, keys...).Err()
}
