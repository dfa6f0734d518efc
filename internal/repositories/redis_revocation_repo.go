package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedTokenNamespace = "revoked_token"

// RedisRevocationRepository keeps revoked session token IDs in Redis. Entries
// expire with the token, so no cleanup pass is needed.
type RedisRevocationRepository struct {
	client redis.UniversalClient
}

func NewRedisRevocationRepository(client redis.UniversalClient) *RedisRevocationRepository {
	return &RedisRevocationRepository{client: client}
}

func revokedKey(jti string) string {
	return revokedTokenNamespace + ":" + jti
}

func (r *RedisRevocationRepository) RevokeToken(ctx context.Context, jti, accountID string, expiresAt time.Time, reason string) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}

	if err := r.client.Set(ctx, revokedKey(jti), accountID, ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (r *RedisRevocationRepository) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	err := r.client.Get(ctx, revokedKey(jti)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return true, nil
}

// CleanupExpiredTokens is a no-op: Redis expires entries itself.
func (r *RedisRevocationRepository) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	return 0, nil
}
