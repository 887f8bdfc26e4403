package cache

import (
	"context"
	"fmt"
	"time"

	"clinic-scheduling-api/config"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	dialTimeout  = 3 * time.Second
	ioTimeout    = 500 * time.Millisecond
	pingDeadline = 3 * time.Second
)

// NewRedisClient connects to the Redis instance backing the availability
// cache, booking rate limiter and session checks. Reads and writes use short
// timeouts because every caller degrades gracefully when Redis is slow.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig, log *logrus.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  dialTimeout,
		ReadTimeout:  ioTimeout,
		WriteTimeout: ioTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingDeadline)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr(), err)
	}

	log.WithField("addr", cfg.Addr()).Info("Successfully connected to Redis")

	return client, nil
}
