package db

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/nemuzard/notesys/internal/config"
)

// ConnectRedis creates a Redis client and verifies connectivity.
// Redis holds the durable email task queue, verification records,
// and a copy of the last published ranking snapshot.
func ConnectRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return rdb, nil
}
