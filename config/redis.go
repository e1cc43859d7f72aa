package config

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
)

// ConnectRedis establishes connection to Redis. It returns nil when Redis
// is not configured or unreachable; sales then run without idempotency keys.
func ConnectRedis(s *Settings) *redis.Client {
	if s.RedisAddr == "" {
		log.Info().Msg("REDIS_ADDR not set, sale idempotency disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         s.RedisAddr,
		Password:     s.RedisPassword,
		DB:           s.RedisDB,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", s.RedisAddr).Msg("Redis connection failed, sale idempotency disabled")
		client.Close()
		return nil
	}

	log.Info().Str("addr", s.RedisAddr).Msg("connected to Redis")
	return client
}
