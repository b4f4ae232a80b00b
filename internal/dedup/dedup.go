// Package dedup suppresses repeat alerts inside a time-to-live window.
//
// Two backings share the Store contract: Local keeps last-sent times in
// process memory; Redis uses SET NX EX so several watchdog processes sharing
// one Redis deliver each key at most once per window.
package dedup

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store gates alert delivery by key.
type Store interface {
	// ShouldSend reports whether the alert keyed by key may be sent at now.
	// A true result consumes the key for the TTL window.
	ShouldSend(ctx context.Context, key string, now time.Time) (bool, error)

	// Name identifies the backing for logs and metrics.
	Name() string

	Close() error
}

// Options selects and configures a backing.
type Options struct {
	TTL time.Duration

	// RedisURL enables the shared backing when non-empty.
	RedisURL string

	// KeyPrefix namespaces Redis keys. Defaults to DefaultKeyPrefix.
	KeyPrefix string

	// PingTimeout bounds the startup reachability check. Defaults to 3s.
	PingTimeout time.Duration
}

// New returns a Redis-backed store when a URL is configured and the server
// answers PING, and a Local store otherwise. An unreachable Redis is logged,
// never fatal.
func New(ctx context.Context, opts Options, logger *slog.Logger) Store {
	if opts.RedisURL == "" {
		logger.Info("Alert deduplication is using local memory", "ttl", opts.TTL)
		return NewLocal(opts.TTL)
	}

	redisOpts, err := redis.ParseURL(opts.RedisURL)
	if err != nil {
		logger.Error("Invalid redis url; using in-process deduplication", "error", err)
		return NewLocal(opts.TTL)
	}

	client := redis.NewClient(redisOpts)

	timeout := opts.PingTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Error("Redis unavailable; using in-process deduplication", "error", err, "addr", redisOpts.Addr)
		client.Close()
		return NewLocal(opts.TTL)
	}

	logger.Info("Alert deduplication is using Redis", "addr", redisOpts.Addr, "ttl", opts.TTL)
	return NewRedis(client, opts.TTL, opts.KeyPrefix)
}
