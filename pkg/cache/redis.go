package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/sma-timetable-api/pkg/config"
)

const dialTimeout = 5 * time.Second

// Client wraps the Redis client used for the organization settings cache.
type Client struct {
	*redis.Client
}

// Address renders host:port for the configured Redis server.
func Address(cfg config.RedisConfig) string {
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}

// NewRedis connects to Redis and verifies the connection before returning.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        Address(cfg),
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: dialTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", Address(cfg), err)
	}
	return &Client{Client: client}, nil
}

// PingContext lets the readiness probe treat Redis like the database.
func (c *Client) PingContext(ctx context.Context) error {
	return c.Ping(ctx).Err()
}
