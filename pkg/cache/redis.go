package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/weekly-attendance-api/pkg/config"
)

// NewRedis returns a configured Redis client. A disabled config yields a nil client.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}

	return client, nil
}

// Pinger adapts a Redis client to readiness probes.
type Pinger struct {
	Client *redis.Client
}

// PingContext reports whether Redis answers.
func (p Pinger) PingContext(ctx context.Context) error {
	if p.Client == nil {
		return fmt.Errorf("redis client not configured")
	}
	return p.Client.Ping(ctx).Err()
}
