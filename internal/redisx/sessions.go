package redisx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrNoSession = errors.New("session not found")

// Sessions maps opaque tokens to user ids. A zero TTL keeps sessions until Delete.
type Sessions struct {
	RDB redis.Cmdable
	TTL time.Duration
}

func (s *Sessions) Create(ctx context.Context, userID string) (string, error) {
	token := uuid.NewString()
	if err := s.RDB.Set(ctx, fmt.Sprintf(KeySession, token), userID, s.TTL).Err(); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return token, nil
}

func (s *Sessions) Get(ctx context.Context, token string) (string, error) {
	userID, err := s.RDB.Get(ctx, fmt.Sprintf(KeySession, token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoSession
	}
	if err != nil {
		return "", fmt.Errorf("get session: %w", err)
	}
	return userID, nil
}

func (s *Sessions) Delete(ctx context.Context, token string) error {
	if err := s.RDB.Del(ctx, fmt.Sprintf(KeySession, token)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
