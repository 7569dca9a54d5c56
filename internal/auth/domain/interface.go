package domain

//go:generate mockgen -destination=../../mocks/mock_stores.go -package=mocks github.com/ironvault/auth-service/internal/auth/domain UserStore,CaptchaVerifier,CodeSender

import (
	"context"
	"time"
)

// UserStore holds registered users. Implementations are selected at
// construction time (in-memory reference, Postgres); absence of a user is
// reported as ErrUserNotFound by Get, never by ValidateCredentials.
type UserStore interface {
	Add(ctx context.Context, user User) error
	Get(ctx context.Context, email Email) (*User, error)
	// ValidateCredentials reports whether email/password match a stored
	// account. It returns false for unknown users rather than an error so
	// account existence does not leak.
	ValidateCredentials(ctx context.Context, email Email, password Password) (bool, error)
	Delete(ctx context.Context, email Email) error
}

// ChallengeStore tracks in-flight second-factor login attempts keyed by
// attempt id.
type ChallengeStore interface {
	Put(ctx context.Context, challenge Challenge) error
	Get(ctx context.Context, id string) (*Challenge, error)
	// MarkConsumed flips the consumed flag exactly once, atomically; a second
	// call reports ErrAlreadyConsumed, so of any concurrent verifications at
	// most one can succeed.
	MarkConsumed(ctx context.Context, id string) error
	Remove(ctx context.Context, id string) error
}

// RevokedTokenStore is the revocation set for bearer tokens. Entries expire
// together with the token they ban, so the set stays bounded.
type RevokedTokenStore interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// CaptchaVerifier is the external CAPTCHA oracle. Calls cross a network
// boundary and must never happen while a store lock is held.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token string, remoteIP string) error
}

// CodeSender delivers one-time codes over an out-of-band channel. Delivery
// is best effort; the core does not consume a result beyond the error.
type CodeSender interface {
	Send(ctx context.Context, email Email, code string) error
}
