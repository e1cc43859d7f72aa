package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/HSouheill/branchstock_backend/models"
	"github.com/go-redis/redis/v8"
)

const saleAttemptTTL = 24 * time.Hour

// RedisIdempotencyStore remembers sale attempts keyed by the client's
// Idempotency-Key so a retried request is never applied twice.
type RedisIdempotencyStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewIdempotencyStore(client *redis.Client) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{
		client: client,
		prefix: "sale:attempt:",
		ttl:    saleAttemptTTL,
	}
}

func (s *RedisIdempotencyStore) key(k string) string {
	return s.prefix + k
}

// Reserve claims key for a new attempt. When the key is already taken the
// stored attempt is returned and reserved is false.
func (s *RedisIdempotencyStore) Reserve(ctx context.Context, key, fingerprint string) (*models.SaleAttempt, bool, error) {
	pending, err := json.Marshal(models.SaleAttempt{State: models.AttemptPending, Fingerprint: fingerprint})
	if err != nil {
		return nil, false, err
	}

	ok, err := s.client.SetNX(ctx, s.key(key), pending, s.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	if ok {
		return nil, true, nil
	}

	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		// Expired between SETNX and GET; try once more.
		return s.Reserve(ctx, key, fingerprint)
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	var attempt models.SaleAttempt
	if err := json.Unmarshal(data, &attempt); err != nil {
		return nil, false, fmt.Errorf("corrupt sale attempt %q: %w", key, err)
	}
	return &attempt, false, nil
}

func (s *RedisIdempotencyStore) Complete(ctx context.Context, key, fingerprint string, receipt models.SaleReceipt) error {
	return s.put(ctx, key, models.SaleAttempt{State: models.AttemptDone, Fingerprint: fingerprint, Receipt: &receipt})
}

func (s *RedisIdempotencyStore) MarkPartial(ctx context.Context, key, fingerprint, detail string) error {
	return s.put(ctx, key, models.SaleAttempt{State: models.AttemptPartial, Fingerprint: fingerprint, Detail: detail})
}

func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	return nil
}

func (s *RedisIdempotencyStore) put(ctx context.Context, key string, attempt models.SaleAttempt) error {
	data, err := json.Marshal(attempt)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	return nil
}
