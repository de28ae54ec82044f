package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"extranet/internal/config"
)

// NewRedis opens a Redis client and verifies it with PING.
// It returns (nil, nil) when no address is configured so callers can fall
// back to a no-op cache.
func NewRedis(c config.RedisConfig) (*redis.Client, error) {
	if c.Addr == "" {
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     c.Addr,
		Password: c.Password,
		DB:       c.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}
