// Package service holds the authentication services: token issuance, the
// brute-force guard, the second-factor challenge manager and the login
// orchestrator that composes them.
package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ironvault/auth-service/internal/auth/domain"
	"github.com/ironvault/auth-service/internal/auth/dto"
	autherror "github.com/ironvault/auth-service/internal/errors"
)

// LoginService is the login orchestrator. It consults the brute-force
// guard, the user store and, conditionally, the challenge manager and token
// service, in that order. External calls (CAPTCHA oracle, code delivery)
// never happen while a store lock is held; the stores lock internally per
// operation.
type LoginService struct {
	users      domain.UserStore
	tokens     *TokenService
	guard      *Guard
	challenges *ChallengeManager
	captcha    domain.CaptchaVerifier
	logger     *zap.Logger
}

// NewLoginService wires the orchestrator. The user store implementation
// (in-memory or Postgres) is chosen by the caller.
func NewLoginService(
	users domain.UserStore,
	tokens *TokenService,
	guard *Guard,
	challenges *ChallengeManager,
	captcha domain.CaptchaVerifier,
	logger *zap.Logger,
) *LoginService {
	return &LoginService{
		users:      users,
		tokens:     tokens,
		guard:      guard,
		challenges: challenges,
		captcha:    captcha,
		logger:     logger,
	}
}

// Signup validates the CAPTCHA token and both credential value objects, then
// registers the user.
func (s *LoginService) Signup(ctx context.Context, input dto.SignupInput) error {
	if input.RecaptchaToken == "" {
		return autherror.ErrRecaptchaFailed
	}
	if err := s.captcha.Verify(ctx, input.RecaptchaToken, input.ClientIP); err != nil {
		return autherror.ErrRecaptchaFailed
	}

	email, err := domain.ParseEmail(input.Email)
	if err != nil {
		return err
	}
	password, err := domain.ParsePassword(input.Password)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password.Expose()), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Requires2FA:  input.Requires2FA,
		CreatedAt:    time.Now(),
	}

	if err := s.users.Add(ctx, user); err != nil {
		return err
	}

	s.logger.Info("user registered", zap.String("email", email.String()), zap.Bool("requires_2fa", user.Requires2FA))
	return nil
}

// Login runs the first factor of the protocol: CAPTCHA gate, credential
// check, guard bookkeeping, then either a token or a pending 2FA challenge.
func (s *LoginService) Login(ctx context.Context, input dto.LoginInput) (*dto.LoginResult, error) {
	// The CAPTCHA gate is checked before the user store is touched.
	if s.guard.CaptchaRequired(input.ClientID) {
		if input.RecaptchaToken == "" {
			return nil, autherror.ErrRecaptchaRequired
		}
		if err := s.captcha.Verify(ctx, input.RecaptchaToken, input.ClientIP); err != nil {
			return nil, autherror.ErrRecaptchaRequired
		}
	}

	email, err := domain.ParseEmail(input.Email)
	if err != nil {
		return nil, autherror.ErrInvalidCredentials
	}
	password, err := domain.ParsePassword(input.Password)
	if err != nil {
		return nil, autherror.ErrInvalidCredentials
	}

	ok, err := s.users.ValidateCredentials(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.guard.RecordFailure(input.ClientID)
		s.logger.Info("login failed", zap.String("client_id", input.ClientID))
		return nil, autherror.ErrInvalidCredentials
	}

	s.guard.RecordSuccess(input.ClientID)

	user, err := s.users.Get(ctx, email)
	if err != nil {
		// The user vanished between the credential check and the read; the
		// stores are not transactional across operations.
		if errors.Is(err, autherror.ErrUserNotFound) {
			return nil, autherror.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.Requires2FA {
		token, err := s.tokens.Issue(email)
		if err != nil {
			return nil, err
		}
		s.logger.Info("login succeeded", zap.String("email", email.String()))
		return &dto.LoginResult{Token: token}, nil
	}

	challenge, err := s.challenges.Begin(ctx, email)
	if err != nil {
		return nil, err
	}
	s.logger.Info("2FA challenge issued", zap.String("email", email.String()))
	return &dto.LoginResult{TwoFARequired: true, LoginAttemptID: challenge.ID}, nil
}

// Verify2FA completes a pending challenge and issues a token. Second-factor
// failures do not touch the brute-force guard.
func (s *LoginService) Verify2FA(ctx context.Context, input dto.Verify2FAInput) (string, error) {
	email, err := domain.ParseEmail(input.Email)
	if err != nil {
		return "", autherror.ErrEmailMismatch
	}

	if err := s.challenges.Verify(ctx, input.LoginAttemptID, email, input.Code); err != nil {
		return "", err
	}

	token, err := s.tokens.Issue(email)
	if err != nil {
		return "", err
	}
	s.logger.Info("2FA verified", zap.String("email", email.String()))
	return token, nil
}

// VerifyToken is a pure read-through to the token service.
func (s *LoginService) VerifyToken(ctx context.Context, token string) (*domain.Claims, error) {
	return s.tokens.Verify(ctx, token)
}

// Logout revokes the token. Revoking an already-revoked or expired token is
// not an error.
func (s *LoginService) Logout(ctx context.Context, token string) error {
	return s.tokens.Revoke(ctx, token)
}

// DeleteAccount removes the user after validating credentials. Bad
// credentials surface as the same generic error as login.
func (s *LoginService) DeleteAccount(ctx context.Context, input dto.DeleteAccountInput) error {
	email, err := domain.ParseEmail(input.Email)
	if err != nil {
		return autherror.ErrInvalidCredentials
	}
	password, err := domain.ParsePassword(input.Password)
	if err != nil {
		return autherror.ErrInvalidCredentials
	}

	ok, err := s.users.ValidateCredentials(ctx, email, password)
	if err != nil {
		return err
	}
	if !ok {
		return autherror.ErrInvalidCredentials
	}

	if err := s.users.Delete(ctx, email); err != nil {
		if errors.Is(err, autherror.ErrUserNotFound) {
			return autherror.ErrInvalidCredentials
		}
		return err
	}

	s.logger.Info("account deleted", zap.String("email", email.String()))
	return nil
}
