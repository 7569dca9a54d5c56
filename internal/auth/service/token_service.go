package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ironvault/auth-service/internal/auth/domain"
	autherror "github.com/ironvault/auth-service/internal/errors"
)

// TokenService issues, verifies and revokes HS256 bearer tokens. Revocation
// is tracked per jti in a dedicated store so revoking one token never
// invalidates another.
type TokenService struct {
	secret  []byte
	expiry  time.Duration
	revoked domain.RevokedTokenStore
}

// NewTokenService constructs a token service with the given signing secret
// and token lifetime.
func NewTokenService(secret string, expiryMinutes int, revoked domain.RevokedTokenStore) *TokenService {
	return &TokenService{
		secret:  []byte(secret),
		expiry:  time.Duration(expiryMinutes) * time.Minute,
		revoked: revoked,
	}
}

// Expiry returns the configured token lifetime.
func (ts *TokenService) Expiry() time.Duration {
	return ts.expiry
}

// Issue produces a signed token carrying the subject email, issue time,
// expiry and a unique jti.
func (ts *TokenService) Issue(email domain.Email) (string, error) {
	now := time.Now()

	claims := jwt.RegisteredClaims{
		Subject:   email.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ts.expiry)),
		ID:        uuid.NewString(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ts.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Verify parses and validates the token, then checks the revocation set.
func (ts *TokenService) Verify(ctx context.Context, tokenString string) (*domain.Claims, error) {
	claims, err := ts.parse(tokenString, true)
	if err != nil {
		return nil, err
	}

	revoked, err := ts.revoked.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, autherror.ErrTokenRevoked
	}
	return claims, nil
}

// Revoke inserts the token's jti into the revocation set until the token's
// own expiry. Expired tokens are a no-op; malformed or badly signed tokens
// report ErrTokenInvalid.
func (ts *TokenService) Revoke(ctx context.Context, tokenString string) error {
	claims, err := ts.parse(tokenString, false)
	if err != nil {
		return err
	}
	if !claims.ExpiresAt.After(time.Now()) {
		return nil
	}
	return ts.revoked.Revoke(ctx, claims.TokenID, claims.ExpiresAt)
}

func (ts *TokenService) parse(tokenString string, validateExpiry bool) (*domain.Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if !validateExpiry {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	var registered jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tokenString, &registered, func(*jwt.Token) (interface{}, error) {
		return ts.secret, nil
	}, opts...)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, autherror.ErrTokenExpired
	}
	if err != nil {
		return nil, autherror.ErrTokenInvalid
	}
	if registered.ExpiresAt == nil || registered.ID == "" {
		return nil, autherror.ErrTokenInvalid
	}

	claims := &domain.Claims{
		Subject:   registered.Subject,
		TokenID:   registered.ID,
		ExpiresAt: registered.ExpiresAt.Time,
	}
	if registered.IssuedAt != nil {
		claims.IssuedAt = registered.IssuedAt.Time
	}
	return claims, nil
}
