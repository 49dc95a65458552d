package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient returns nil when no address is configured.
func NewRedisClient(ctx context.Context, cfg internal.RedisConfig, maxRetries int, logger *slog.Logger) (*redis.Client, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	if maxRetries < 1 {
		maxRetries = 1
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	var lastErr error
	for i := 1; i <= maxRetries; i++ {
		if lastErr = rdb.Ping(ctx).Err(); lastErr == nil {
			logger.Info("connected to redis", "addr", cfg.Addr)
			return rdb, nil
		}
		logger.Warn("redis ping failed", "attempt", i, "max_retries", maxRetries, "error", lastErr)
		if i < maxRetries {
			time.Sleep(time.Second)
		}
	}

	_ = rdb.Close()
	return nil, fmt.Errorf("failed to connect redis: %w", lastErr)
}
