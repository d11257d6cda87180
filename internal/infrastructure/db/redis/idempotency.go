package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultIdempotencyTTL = time.Hour
	pendingValue          = "0"
)

// IdempotencyStore remembers the booking created for each Idempotency-Key.
// Keys are scoped per user: idempotency:order:<userID>:<key>. A value of "0"
// marks a request that is still being processed.
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

// Claim reserves key for the caller. It returns false when another request
// already holds it.
func (s *IdempotencyStore) Claim(ctx context.Context, userID int64, key string) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.key(userID, key), pendingValue, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("idempotency claim: %w", err)
	}
	return ok, nil
}

// Lookup returns the booking id stored for key, or zero while pending.
func (s *IdempotencyStore) Lookup(ctx context.Context, userID int64, key string) (int64, error) {
	v, err := s.client.Get(ctx, s.key(userID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("idempotency lookup: %w", err)
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("idempotency lookup: bad value %q: %w", v, err)
	}
	return id, nil
}

// Complete stores the booking id for key, refreshing its expiry.
func (s *IdempotencyStore) Complete(ctx context.Context, userID int64, key string, bookingID int64) error {
	if err := s.client.Set(ctx, s.key(userID, key), strconv.FormatInt(bookingID, 10), s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency complete: %w", err)
	}
	return nil
}

// Release drops a claim so the request can be retried.
func (s *IdempotencyStore) Release(ctx context.Context, userID int64, key string) error {
	if err := s.client.Del(ctx, s.key(userID, key)).Err(); err != nil {
		return fmt.Errorf("idempotency release: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) key(userID int64, k string) string {
	return "idempotency:order:" + strconv.FormatInt(userID, 10) + ":" + k
}
