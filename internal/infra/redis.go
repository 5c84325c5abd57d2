package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedis creates the go-redis client used by the email queue and the DLQ.
// Connectivity is verified up front; a taller instance without Redis cannot
// deliver notifications, so startup fails fast.
func NewRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis url invalida: %w", err)
	}
	opts.MinIdleConns = 1
	opts.DialTimeout = 5 * time.Second

	rdb := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis no responde: %w", err)
	}
	return rdb, nil
}
