package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/glowfit-dev/glowfit/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	client *redis.Client
	ctx    = context.Background()
)

// ErrMiss is returned by Get on a cache miss or when the cache is disabled.
var ErrMiss = fmt.Errorf("cache miss")

// Init connects to redis when an address is configured. Without one the
// cache stays disabled and every Get reports a miss.
func Init(cfg config.RedisConfig, logger *zap.Logger) error {
	if cfg.Addr == "" {
		logger.Info("redis_disabled")
		return nil
	}

	client = redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client = nil
		logger.Error("redis_connection_failed",
			zap.Error(err),
			zap.String("addr", cfg.Addr),
		)
		return err
	}

	logger.Info("redis_connected",
		zap.String("addr", cfg.Addr),
	)

	return nil
}

func Enabled() bool {
	return client != nil
}

func Set(key string, value interface{}, expiration time.Duration) error {
	if client == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}

	return client.Set(ctx, key, data, expiration).Err()
}

func Get(key string, dest interface{}) error {
	if client == nil {
		return ErrMiss
	}

	val, err := client.Get(ctx, key).Result()
	if err == redis.Nil {
		return ErrMiss
	} else if err != nil {
		return fmt.Errorf("cache get failed: %w", err)
	}

	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return fmt.Errorf("cache unmarshal failed: %w", err)
	}

	return nil
}

func Delete(key string) error {
	if client == nil {
		return nil
	}

	return client.Del(ctx, key).Err()
}

func Close() error {
	if client == nil {
		return nil
	}

	return client.Close()
}
