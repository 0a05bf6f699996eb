package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"socialdash/internal/logging"
)

// Client wraps redis.Client. Get, Set and Delete fail safe by treating
// connectivity errors as a cache miss; Fetch, Store and Remove report them.
type Client struct {
	client *redis.Client
	logger logging.Logger
}

// New creates a new Redis client.
func New(addr, password string, db int, logger logging.Logger) *Client {
	opts := &redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}
	return NewFromRedis(redis.NewClient(opts), logger)
}

// NewFromRedis wraps an existing redis client.
func NewFromRedis(rdb *redis.Client, logger logging.Logger) *Client {
	return &Client{client: rdb, logger: logging.OrDiscard(logger)}
}

// Ping checks that redis is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return errors.New("redis client not configured")
	}
	return c.client.Ping(ctx).Err()
}

// Fetch returns the value for key, or nil when the key is missing.
func (c *Client) Fetch(ctx context.Context, key string) ([]byte, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("redis client not configured")
	}
	res, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Store sets key to value. A zero ttl keeps the key until removed.
func (c *Client) Store(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c == nil || c.client == nil {
		return errors.New("redis client not configured")
	}
	return c.client.Set(ctx, key, value, ttl).Err()
}

// Remove deletes key.
func (c *Client) Remove(ctx context.Context, key string) error {
	if c == nil || c.client == nil {
		return errors.New("redis client not configured")
	}
	return c.client.Del(ctx, key).Err()
}

// Get returns value or nil if missing or redis unavailable.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}
	res, err := c.Fetch(ctx, key)
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("cache get failed, treating as miss")
		return nil, nil
	}
	return res, nil
}

// Set stores value with TTL, ignoring redis errors.
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c == nil || c.client == nil {
		return nil
	}
	if err := c.Store(ctx, key, value, ttl); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("cache set failed")
	}
	return nil
}

// Delete removes a key, ignoring redis errors.
func (c *Client) Delete(ctx context.Context, key string) error {
	if c == nil || c.client == nil {
		return nil
	}
	if err := c.Remove(ctx, key); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("cache delete failed")
	}
	return nil
}

// Close releases the connection pool.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
