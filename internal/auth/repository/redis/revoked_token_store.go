// Package redis implements Redis-backed variants of the revocation set and
// the challenge store. TTLs mirror the entity's own expiry so Redis evicts
// stale entries without any sweeper.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "revoked:"

// RevokedTokenStore keeps banned token ids in Redis with a TTL equal to the
// remaining token lifetime.
type RevokedTokenStore struct {
	client *redis.Client
}

// NewRevokedTokenStore constructs the store on an existing client.
func NewRevokedTokenStore(client *redis.Client) *RevokedTokenStore {
	return &RevokedTokenStore{client: client}
}

func (s *RevokedTokenStore) key(tokenID string) string {
	return revokedKeyPrefix + tokenID
}

// Revoke inserts tokenID until expiresAt. Tokens already past their expiry
// are a no-op.
func (s *RevokedTokenStore) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, s.key(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether tokenID is present in the revocation set.
func (s *RevokedTokenStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return n > 0, nil
}
