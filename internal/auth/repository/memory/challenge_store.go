package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ironvault/auth-service/internal/auth/domain"
	autherror "github.com/ironvault/auth-service/internal/errors"
)

// ChallengeStore is the in-memory store for pending second-factor attempts,
// keyed by attempt id. Entries live until their expiry: consumed challenges
// are kept so a replay within the attempt window is distinguishable from an
// unknown id, and expired ones are purged lazily on access or by Sweep.
type ChallengeStore struct {
	mu         sync.RWMutex
	challenges map[string]domain.Challenge
	now        func() time.Time
}

// NewChallengeStore returns an empty challenge store.
func NewChallengeStore() *ChallengeStore {
	return &ChallengeStore{
		challenges: make(map[string]domain.Challenge),
		now:        time.Now,
	}
}

// Put stores or replaces the challenge under its id.
func (s *ChallengeStore) Put(_ context.Context, challenge domain.Challenge) error {
	s.mu.Lock()
	s.challenges[challenge.ID] = challenge
	s.mu.Unlock()
	return nil
}

// Get returns the challenge for id, or ErrAttemptNotFound. Expired entries
// are dropped on the way out, matching the Redis store's TTL eviction.
func (s *ChallengeStore) Get(_ context.Context, id string) (*domain.Challenge, error) {
	s.mu.RLock()
	challenge, ok := s.challenges[id]
	s.mu.RUnlock()

	if !ok {
		return nil, autherror.ErrAttemptNotFound
	}
	if challenge.Expired(s.now()) {
		s.mu.Lock()
		// Re-check under the write lock; the id may have been reused for a
		// fresh challenge in the meantime.
		if c, ok := s.challenges[id]; ok && c.Expired(s.now()) {
			delete(s.challenges, id)
		}
		s.mu.Unlock()
		return nil, autherror.ErrAttemptNotFound
	}
	return &challenge, nil
}

// MarkConsumed flips the consumed flag for id exactly once. A second call
// reports ErrAlreadyConsumed; the check and the flip happen under one lock so
// concurrent callers cannot both win.
func (s *ChallengeStore) MarkConsumed(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	challenge, ok := s.challenges[id]
	if !ok {
		return autherror.ErrAttemptNotFound
	}
	if challenge.Expired(s.now()) {
		delete(s.challenges, id)
		return autherror.ErrAttemptNotFound
	}
	if challenge.Consumed {
		return autherror.ErrAlreadyConsumed
	}
	challenge.Consumed = true
	s.challenges[id] = challenge
	return nil
}

// Remove purges the challenge for id. Removing an absent id is not an error.
func (s *ChallengeStore) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.challenges, id)
	s.mu.Unlock()
	return nil
}

// Sweep drops every expired challenge. Intended for a periodic background
// call to bound memory for ids that are never looked up again.
func (s *ChallengeStore) Sweep() {
	now := s.now()

	s.mu.Lock()
	for id, challenge := range s.challenges {
		if challenge.Expired(now) {
			delete(s.challenges, id)
		}
	}
	s.mu.Unlock()
}
