package redis

import (
	"github.com/redis/go-redis/v9"

	"ssonotify/internal/config"
)

// NewClient builds a redis client for the dedup fast-path cache.
func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}
