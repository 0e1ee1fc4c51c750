package redisclient

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/redis/go-redis/v9"

	"giftvideo-service/pkg/config"
)

// Client wraps the go-redis client to allow tailored helpers.
type Client struct {
	native *redis.Client
}

// New builds a redis client using service configuration and validates the connection.
func New(cfg config.RedisConfig) (*Client, error) {
	opts := &redis.Options{
		Addr: cfg.GetRedisAddr(),
	}

	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if cfg.DB != 0 {
		opts.DB = cfg.DB
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.MinIdleConns > 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}

	opts.DialTimeout = pickDuration(cfg.DialTimeout, 5*time.Second)
	opts.ReadTimeout = pickDuration(cfg.ReadTimeout, 3*time.Second)
	opts.WriteTimeout = pickDuration(cfg.WriteTimeout, 3*time.Second)

	if cfg.EnableTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	cli := redis.NewClient(opts)
	if err := cli.Ping(context.Background()).Err(); err != nil {
		_ = cli.Close()
		return nil, err
	}

	return &Client{native: cli}, nil
}

// Raw exposes the underlying go-redis client for advanced use cases.
func (c *Client) Raw() *redis.Client {
	return c.native
}

// Close stops the redis client and releases pooled connections.
func (c *Client) Close() error {
	return c.native.Close()
}

// AcquireLock takes a best-effort advisory lock via SETNX; returns false when held elsewhere.
func (c *Client) AcquireLock(ctx context.Context, key, holder string, ttl time.Duration) (bool, error) {
	return c.native.SetNX(ctx, key, holder, ttl).Result()
}

// ReleaseLock drops an advisory lock. Releasing a lock we no longer hold is harmless.
func (c *Client) ReleaseLock(ctx context.Context, key string) error {
	return c.native.Del(ctx, key).Err()
}

// CacheURL stores a short-lived string value (signed URL) with the given TTL.
func (c *Client) CacheURL(ctx context.Context, key, url string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return c.native.Set(ctx, key, url, ttl).Err()
}

// GetCachedURL returns the cached value, or empty string on miss.
func (c *Client) GetCachedURL(ctx context.Context, key string) (string, error) {
	v, err := c.native.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return v, err
}

func pickDuration(v time.Duration, fallback time.Duration) time.Duration {
	if v <= 0 {
		return fallback
	}
	return v
}
