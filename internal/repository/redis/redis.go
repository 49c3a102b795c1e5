package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"dormdigest/internal/config"
)

// New builds a client for cfg and pings it once. The caller closes it.
func New(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// NewSessionCache wires a cache over client with the configured TTL.
func NewSessionCache(client *redis.Client, cfg config.RedisConfig) *SessionCache {
	return &SessionCache{Client: client, TTL: cfg.TTL}
}
