package memory

import (
	"context"
	"sync"
	"time"
)

// RevokedTokenStore is the in-memory revocation set. Entries carry the
// expiry of the token they ban and are purged lazily once stale, so the set
// never grows beyond the live token population.
type RevokedTokenStore struct {
	mu      sync.RWMutex
	revoked map[string]time.Time
	now     func() time.Time
}

// NewRevokedTokenStore returns an empty revocation set.
func NewRevokedTokenStore() *RevokedTokenStore {
	return &RevokedTokenStore{
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Revoke inserts tokenID with the token's own expiry. Revoking an already
// revoked or already expired token is a no-op.
func (s *RevokedTokenStore) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	if !expiresAt.After(s.now()) {
		return nil
	}

	s.mu.Lock()
	s.revoked[tokenID] = expiresAt
	s.mu.Unlock()
	return nil
}

// IsRevoked reports whether tokenID is in the revocation set. Stale entries
// are dropped on the way out.
func (s *RevokedTokenStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.RLock()
	expiresAt, ok := s.revoked[tokenID]
	s.mu.RUnlock()

	if !ok {
		return false, nil
	}
	if !expiresAt.After(s.now()) {
		s.mu.Lock()
		// Re-check under the write lock; another request may have replaced
		// the entry with a fresher expiry.
		if exp, ok := s.revoked[tokenID]; ok && !exp.After(s.now()) {
			delete(s.revoked, tokenID)
		}
		s.mu.Unlock()
		return false, nil
	}
	return true, nil
}
