// Package idempotency stores completed responses under a client-supplied
// Idempotency-Key so retried requests replay instead of re-executing.
package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const lockTTL = 30 * time.Second

// Response is the replayable part of an HTTP response.
type Response struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

// Key scopes a client key to a route and a user.
func Key(route, userID, clientKey string) string {
	return fmt.Sprintf("idemp:%s:%s:%s", route, userID, clientKey)
}

func lockKey(key string) string {
	return key + ":lock"
}

// Lookup returns a stored response for key, if any.
func (s *Store) Lookup(ctx context.Context, key string) (Response, bool, error) {
	val, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return Response{}, false, nil
	}
	if err != nil {
		return Response{}, false, fmt.Errorf("idempotency lookup: %w", err)
	}

	var resp Response
	if err := json.Unmarshal([]byte(val), &resp); err != nil {
		return Response{}, false, fmt.Errorf("idempotency decode: %w", err)
	}
	return resp, true, nil
}

// Acquire takes the in-flight lock for key. It returns false when another
// request holding the same key is still running.
func (s *Store) Acquire(ctx context.Context, key string) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, lockKey(key), "locked", lockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("idempotency lock: %w", err)
	}
	return ok, nil
}

// Save stores resp under key and releases the lock.
func (s *Store) Save(ctx context.Context, key string, resp Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("idempotency encode: %w", err)
	}
	if err := s.rdb.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency save: %w", err)
	}
	return s.Release(ctx, key)
}

// Release drops the lock without storing a response, so the client may retry.
func (s *Store) Release(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, lockKey(key)).Err(); err != nil {
		return fmt.Errorf("idempotency unlock: %w", err)
	}
	return nil
}
