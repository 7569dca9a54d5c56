package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/ironvault/auth-service/internal/auth/domain"
	autherror "github.com/ironvault/auth-service/internal/errors"
)

// ChallengeManager tracks in-flight second-factor login attempts. Each
// attempt binds an unguessable id to an email and a fresh one-time code; a
// given attempt id verifies successfully at most once, ever.
type ChallengeManager struct {
	store  domain.ChallengeStore
	sender domain.CodeSender
	ttl    time.Duration
	now    func() time.Time
}

// NewChallengeManager constructs a challenge manager. ttlMinutes bounds how
// long a pending attempt stays verifiable.
func NewChallengeManager(store domain.ChallengeStore, sender domain.CodeSender, ttlMinutes int) *ChallengeManager {
	return &ChallengeManager{
		store:  store,
		sender: sender,
		ttl:    time.Duration(ttlMinutes) * time.Minute,
		now:    time.Now,
	}
}

// Begin creates a fresh challenge for email, stores it and hands the code to
// the delivery channel. The delivery call happens after the store write and
// outside any store lock.
func (m *ChallengeManager) Begin(ctx context.Context, email domain.Email) (*domain.Challenge, error) {
	code, err := generateCode()
	if err != nil {
		return nil, fmt.Errorf("generate 2FA code: %w", err)
	}

	now := m.now()
	challenge := domain.Challenge{
		ID:        uuid.NewString(),
		Email:     email,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}

	if err := m.store.Put(ctx, challenge); err != nil {
		return nil, err
	}

	if err := m.sender.Send(ctx, email, code); err != nil {
		// Undo so an undeliverable code cannot be verified later.
		_ = m.store.Remove(ctx, challenge.ID)
		return nil, fmt.Errorf("deliver 2FA code: %w", err)
	}

	return &challenge, nil
}

// Verify checks the attempt id, binding email and code. On an exact match
// the challenge is marked consumed and can never verify again; expired
// challenges are purged on the way out.
func (m *ChallengeManager) Verify(ctx context.Context, id string, email domain.Email, code string) error {
	challenge, err := m.store.Get(ctx, id)
	if err != nil {
		return err
	}

	if challenge.Expired(m.now()) {
		_ = m.store.Remove(ctx, id)
		return autherror.ErrAttemptExpired
	}
	if challenge.Consumed {
		return autherror.ErrAlreadyConsumed
	}
	if challenge.Email != email {
		return autherror.ErrEmailMismatch
	}
	if subtle.ConstantTimeCompare([]byte(challenge.Code), []byte(code)) != 1 {
		return autherror.ErrCodeMismatch
	}

	// The consumed check above is a fast path over a stale read; the store's
	// atomic flip decides who wins a concurrent verification.
	return m.store.MarkConsumed(ctx, id)
}

// generateCode returns a uniformly random six-digit code.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
