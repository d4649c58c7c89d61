package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"assistant_server/core/port/out"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// OAuthStateKey prefixes consent state keys.
const OAuthStateKey = "oauth:state:"

// RedisOAuthStateStore keeps consent state values for CSRF protection.
type RedisOAuthStateStore struct {
	client redis.Cmdable
}

var _ out.OAuthStateStore = (*RedisOAuthStateStore)(nil)

func NewRedisOAuthStateStore(client redis.Cmdable) *RedisOAuthStateStore {
	return &RedisOAuthStateStore{client: client}
}

func (s *RedisOAuthStateStore) StoreState(ctx context.Context, state string, userID uuid.UUID, ttl time.Duration) error {
	if state == "" {
		return fmt.Errorf("%w: state cannot be empty", ErrInvalidInput)
	}
	if userID == uuid.Nil {
		return fmt.Errorf("%w: userID cannot be nil", ErrInvalidInput)
	}

	if err := s.client.Set(ctx, OAuthStateKey+state, userID.String(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to store OAuth state: %w", err)
	}
	return nil
}

// ValidateState is single use: GETDEL removes the key as it reads it.
func (s *RedisOAuthStateStore) ValidateState(ctx context.Context, state string) (uuid.UUID, error) {
	if state == "" {
		return uuid.Nil, ErrStateInvalid
	}

	userIDStr, err := s.client.GetDel(ctx, OAuthStateKey+state).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, ErrStateInvalid
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to validate OAuth state: %w", err)
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid userID in state: %w", err)
	}
	return userID, nil
}
