package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"diario/pkg/models"
)

// TokenStore holds short-lived one-shot tokens (newsletter double
// opt-in confirmation, unsubscribe links). Backed by redis so tokens
// expire on their own and survive server restarts.
type TokenStore interface {
	// Save stores payload under a kind-scoped token for ttl.
	Save(ctx context.Context, kind, token, payload string, ttl time.Duration) error
	// Take retrieves and deletes the payload; a token redeems once.
	Take(ctx context.Context, kind, token string) (string, error)
}

type redisTokenStore struct {
	client *redis.Client
}

// NewTokenStore creates a redis-backed token store
func NewTokenStore(client *redis.Client) TokenStore {
	return &redisTokenStore{client: client}
}

func tokenKey(kind, token string) string {
	return fmt.Sprintf("%s:%s", kind, token)
}

// Save stores a token with TTL
func (s *redisTokenStore) Save(ctx context.Context, kind, token, payload string, ttl time.Duration) error {
	if err := s.client.Set(ctx, tokenKey(kind, token), payload, ttl).Err(); err != nil {
		return fmt.Errorf("token_store save: %w", err)
	}
	return nil
}

// Take redeems a token, deleting it in the same round trip
func (s *redisTokenStore) Take(ctx context.Context, kind, token string) (string, error) {
	payload, err := s.client.GetDel(ctx, tokenKey(kind, token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("token_store take: %w", models.ErrTokenExpired)
	}
	if err != nil {
		return "", fmt.Errorf("token_store take: %w", err)
	}
	return payload, nil
}
