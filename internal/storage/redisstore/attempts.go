// Package redisstore backs the duplicate-session guard with Redis so the
// guard holds across multiple server instances, not just one process.
package redisstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"

	"github.com/cszshop/checkout-api/internal/domain/checkout"
)

const keyPrefix = "checkout:attempt:"

var _ checkout.AttemptStore = (*AttemptStore)(nil)

// AttemptStore stores completed card-session results keyed by checkout
// attempt id, as JSON values with a TTL matching the attempt's lifetime.
type AttemptStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAttemptStore creates an AttemptStore on the given Redis client.
func NewAttemptStore(client *redis.Client, ttl time.Duration) *AttemptStore {
	return &AttemptStore{client: client, ttl: ttl}
}

func (s *AttemptStore) Get(ctx context.Context, attemptID string) (*checkout.CardSessionResult, error) {
	val, err := s.client.Get(ctx, keyPrefix+attemptID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get attempt")
	}

	var res checkout.CardSessionResult
	if err := json.Unmarshal([]byte(val), &res); err != nil {
		return nil, errors.Wrap(err, "decode attempt")
	}
	return &res, nil
}

func (s *AttemptStore) Put(ctx context.Context, attemptID string, res *checkout.CardSessionResult) error {
	buf, err := json.Marshal(res)
	if err != nil {
		return errors.Wrap(err, "encode attempt")
	}
	if err := s.client.Set(ctx, keyPrefix+attemptID, buf, s.ttl).Err(); err != nil {
		return errors.Wrap(err, "set attempt")
	}
	return nil
}
