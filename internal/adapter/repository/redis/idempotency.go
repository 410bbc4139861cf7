package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vaultbank/bankcore/internal/infrastructure/metrics"
)

// IdempotencyStore implements usecase.IdempotencyStore using Redis. It backs
// the HTTP Idempotency-Key middleware; the durable replay guarantee lives in
// the transactions table, this layer only short-circuits repeated requests
// with the original response body.
type IdempotencyStore struct {
	client  *redis.Client
	prefix  string
	metrics *metrics.Metrics
}

// NewIdempotencyStore creates a new IdempotencyStore.
func NewIdempotencyStore(client *redis.Client, m *metrics.Metrics) *IdempotencyStore {
	return &IdempotencyStore{
		client:  client,
		prefix:  "idempotency:",
		metrics: m,
	}
}

// CheckAndSet atomically checks if key exists, sets if not.
func (s *IdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	s.count("check_and_set")

	fullKey := s.prefix + key

	existing, err := s.client.Get(ctx, fullKey).Bytes()
	if err == nil {
		return true, existing, nil
	}
	if err != redis.Nil {
		return false, nil, s.fail("check_and_set", err)
	}

	if response != nil {
		err = s.client.Set(ctx, fullKey, response, ttl).Err()
		if err != nil {
			return false, nil, s.fail("check_and_set", err)
		}
	} else {
		// Set placeholder to "lock" the key
		set, err := s.client.SetNX(ctx, fullKey, "processing", ttl).Result()
		if err != nil {
			return false, nil, s.fail("check_and_set", err)
		}
		if !set {
			// Another request got there first
			existing, err := s.client.Get(ctx, fullKey).Bytes()
			if err != nil && err != redis.Nil {
				return false, nil, s.fail("check_and_set", err)
			}
			return true, existing, nil
		}
	}

	return false, nil, nil
}

// Update updates an existing idempotency key with the final response.
func (s *IdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	s.count("update")

	fullKey := s.prefix + key
	if err := s.client.Set(ctx, fullKey, response, ttl).Err(); err != nil {
		return s.fail("update", err)
	}

	return nil
}

func (s *IdempotencyStore) count(op string) {
	if s.metrics != nil {
		s.metrics.RedisOperations.WithLabelValues(op).Inc()
	}
}

func (s *IdempotencyStore) fail(op string, err error) error {
	if s.metrics != nil {
		s.metrics.RedisErrors.WithLabelValues(op).Inc()
	}

	return err
}
