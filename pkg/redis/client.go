// Package redis provides a thin wrapper around go-redis/v9 with connection
// pooling and a token-guarded distributed lock used to serialise ingestion
// runs.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Adithya-Monish-Kumar-K/textsearch/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/textsearch/pkg/errors"
)

// Client wraps a go-redis client.
type Client struct {
	rdb *redis.Client
}

// NewClient creates a Redis client and verifies the connection with a PING.
func NewClient(cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Client{rdb: rdb}, nil
}

// Close closes the underlying Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping sends a PING to Redis and returns any error.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Lock is a single-holder lock on one key. The TTL bounds how long a crashed
// holder can block others.
type Lock struct {
	client *Client
	key    string
	ttl    time.Duration
}

// NewLock returns a Lock on key.
func (c *Client) NewLock(key string, ttl time.Duration) *Lock {
	return &Lock{client: c, key: key, ttl: ttl}
}

// Acquire takes the lock or fails with ErrLockHeld. It does not wait.
func (l *Lock) Acquire(ctx context.Context) (func(context.Context) error, error) {
	token := uuid.NewString()
	ok, err := l.client.rdb.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquiring lock %s: %w", l.key, err)
	}
	if !ok {
		return nil, fmt.Errorf("lock %s: %w", l.key, apperrors.ErrLockHeld)
	}
	release := func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client.rdb, []string{l.key}, token).Err(); err != nil {
			return fmt.Errorf("releasing lock %s: %w", l.key, err)
		}
		return nil
	}
	return release, nil
}
