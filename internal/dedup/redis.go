package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces alert keys in a shared Redis.
const DefaultKeyPrefix = "eipl:watchdog:alert:"

// Redis is a Store backed by SET NX EX. Expiry is handled by Redis itself,
// so the now argument is only recorded as the value.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client, ttl time.Duration, prefix string) *Redis {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Redis{client: client, ttl: ttl, prefix: prefix}
}

// ShouldSend implements Store.
func (r *Redis) ShouldSend(ctx context.Context, key string, now time.Time) (bool, error) {
	ok, err := r.client.SetNX(ctx, r.prefix+key, now.UTC().Format(time.RFC3339), r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis set-if-absent %q: %w", key, err)
	}
	return ok, nil
}

func (r *Redis) Name() string { return "redis" }

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}
