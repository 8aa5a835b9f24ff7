package redis

import (
	"context"
	"fmt"
	"time"

	redisclient "github.com/redis/go-redis/v9"
)

// TokenBlacklist holds JWTs invalidated by logout. Entries expire on their
// own via Redis TTL, matching the token lifetime, so the set never needs
// manual cleanup.
type TokenBlacklist struct {
	client *redisclient.Client
}

func NewTokenBlacklist(client *redisclient.Client) *TokenBlacklist {
	return &TokenBlacklist{client: client}
}

func (b *TokenBlacklist) tokenKey(token string) string {
	return fmt.Sprintf("token:blacklist:%s", token)
}

func (b *TokenBlacklist) Add(ctx context.Context, token string, ttl time.Duration) error {
	if err := b.client.Set(ctx, b.tokenKey(token), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}
	return nil
}

func (b *TokenBlacklist) Contains(ctx context.Context, token string) (bool, error) {
	count, err := b.client.Exists(ctx, b.tokenKey(token)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	return count > 0, nil
}
