// Package idempotency keeps a short-lived marker per key in Redis so a
// one-shot operation runs once even when its request is submitted twice.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrUnknownState is returned when a key holds a value this package did not write.
var ErrUnknownState = errors.New("idempotency: unknown state")

// State is what Acquire found for a key.
type State uint8

const (
	StateUnknown State = iota
	// StateAcquired means the caller now owns the key and must complete or release it.
	StateAcquired
	// StateInProgress means another caller owns the key.
	StateInProgress
	// StateCompleted means the operation already succeeded.
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateAcquired:
		return "acquired"
	case StateInProgress:
		return "in_progress"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

const (
	valuePending = "pending"
	valueDone    = "done"
)

// Store keeps markers under "<namespace>:<key>".
type Store struct {
	client    redis.Cmdable
	namespace string
}

func New(client redis.Cmdable, namespace string) *Store {
	return &Store{client: client, namespace: namespace}
}

func (s *Store) key(k string) string { return s.namespace + ":" + k }

// Acquire sets a pending marker for lock if the key is free. The check and the
// write are one SET NX GET round trip, which needs Redis 7 or newer.
func (s *Store) Acquire(ctx context.Context, key string, lock time.Duration) (State, error) {
	prev, err := s.client.SetArgs(ctx, s.key(key), valuePending, redis.SetArgs{
		Mode: "NX",
		TTL:  lock,
		Get:  true,
	}).Result()

	switch {
	case errors.Is(err, redis.Nil):
		return StateAcquired, nil
	case err != nil:
		return StateUnknown, err
	}

	switch prev {
	case valuePending:
		return StateInProgress, nil
	case valueDone:
		return StateCompleted, nil
	default:
		return StateUnknown, fmt.Errorf("%w: %q", ErrUnknownState, prev)
	}
}

// MarkCompleted replaces the pending marker with a done marker kept for ttl.
func (s *Store) MarkCompleted(ctx context.Context, key string, ttl time.Duration) error {
	return s.client.Set(ctx, s.key(key), valueDone, ttl).Err()
}

// Release drops the marker so the operation can be retried.
func (s *Store) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}
