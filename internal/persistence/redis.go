package persistence

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/ghost-league/internal/config"
)

// Redis wraps the go-redis client used for verification codes and rate
// limit counters.
type Redis struct {
	Client    *redis.Client
	reachable bool
}

// NewRedis connects to Redis using the provided configuration. An
// unreachable Redis is tolerated; callers fall back to in-memory stores.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	if cfg.Addr == "" {
		logger.Warn("REDIS_ADDR not provided; using in-memory stores")
		return &Redis{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	reachable := true
	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis; using in-memory stores", zap.Error(err))
		reachable = false
	} else {
		logger.Info("connected to redis")
	}

	return &Redis{Client: client, reachable: reachable}
}

// Available reports whether the Redis backend should be used.
func (r *Redis) Available() bool {
	return r != nil && r.Client != nil && r.reachable
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}
