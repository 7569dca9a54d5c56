package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ironvault/auth-service/internal/auth/dto"
	"github.com/ironvault/auth-service/internal/auth/repository/memory"
	autherror "github.com/ironvault/auth-service/internal/errors"
)

type stubCaptcha struct {
	err   error
	calls int
}

func (c *stubCaptcha) Verify(context.Context, string, string) error {
	c.calls++
	return c.err
}

type loginFixture struct {
	service *LoginService
	guard   *Guard
	captcha *stubCaptcha
	sender  *recordingSender
}

func newLoginFixture(t *testing.T) *loginFixture {
	t.Helper()

	guard := NewGuard(5, 15*time.Minute)
	captcha := &stubCaptcha{}
	sender := &recordingSender{}
	tokens := NewTokenService("test-secret", 10, memory.NewRevokedTokenStore())
	challenges := NewChallengeManager(memory.NewChallengeStore(), sender, 10)

	return &loginFixture{
		service: NewLoginService(memory.NewUserStore(), tokens, guard, challenges, captcha, zap.NewNop()),
		guard:   guard,
		captcha: captcha,
		sender:  sender,
	}
}

func (f *loginFixture) signup(t *testing.T, email, password string, requires2FA bool) {
	t.Helper()
	err := f.service.Signup(context.Background(), dto.SignupInput{
		Email:          email,
		Password:       password,
		Requires2FA:    requires2FA,
		RecaptchaToken: "signup-token",
	})
	require.NoError(t, err)
}

func TestSignup(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		f := newLoginFixture(t)
		f.signup(t, "test@example.com", "Test123!", false)
		assert.Equal(t, 1, f.captcha.calls)
	})

	t.Run("duplicate email", func(t *testing.T) {
		f := newLoginFixture(t)
		f.signup(t, "test@example.com", "Test123!", false)

		err := f.service.Signup(ctx, dto.SignupInput{
			Email:          "test@example.com",
			Password:       "Test123!",
			RecaptchaToken: "tok",
		})
		assert.ErrorIs(t, err, autherror.ErrUserAlreadyExists)
	})

	t.Run("invalid email", func(t *testing.T) {
		f := newLoginFixture(t)
		err := f.service.Signup(ctx, dto.SignupInput{Email: "nope", Password: "Test123!", RecaptchaToken: "tok"})
		assert.ErrorIs(t, err, autherror.ErrInvalidEmail)
	})

	t.Run("weak password", func(t *testing.T) {
		f := newLoginFixture(t)
		err := f.service.Signup(ctx, dto.SignupInput{Email: "test@example.com", Password: "weak", RecaptchaToken: "tok"})
		assert.ErrorIs(t, err, autherror.ErrInvalidPassword)
	})

	t.Run("captcha failure", func(t *testing.T) {
		f := newLoginFixture(t)
		f.captcha.err = errors.New("verification failed")

		err := f.service.Signup(ctx, dto.SignupInput{Email: "test@example.com", Password: "Test123!", RecaptchaToken: "tok"})
		assert.ErrorIs(t, err, autherror.ErrRecaptchaFailed)
	})

	t.Run("missing captcha token", func(t *testing.T) {
		f := newLoginFixture(t)
		err := f.service.Signup(ctx, dto.SignupInput{Email: "test@example.com", Password: "Test123!"})
		assert.ErrorIs(t, err, autherror.ErrRecaptchaFailed)
	})
}

func TestLoginDirect(t *testing.T) {
	ctx := context.Background()
	f := newLoginFixture(t)
	f.signup(t, "test@example.com", "Test123!", false)

	result, err := f.service.Login(ctx, dto.LoginInput{
		Email:    "test@example.com",
		Password: "Test123!",
		ClientID: "1.2.3.4",
	})
	require.NoError(t, err)
	assert.False(t, result.TwoFARequired)
	assert.NotEmpty(t, result.Token)

	claims, err := f.service.VerifyToken(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, "test@example.com", claims.Subject)
}

func TestLoginInvalidCredentials(t *testing.T) {
	ctx := context.Background()
	f := newLoginFixture(t)
	f.signup(t, "test@example.com", "Test123!", false)

	tests := []struct {
		name  string
		input dto.LoginInput
	}{
		{name: "wrong password", input: dto.LoginInput{Email: "test@example.com", Password: "Wrong123!", ClientID: "c"}},
		{name: "unknown user", input: dto.LoginInput{Email: "nobody@example.com", Password: "Test123!", ClientID: "c"}},
		{name: "malformed email", input: dto.LoginInput{Email: "nope", Password: "Test123!", ClientID: "c"}},
		{name: "malformed password", input: dto.LoginInput{Email: "test@example.com", Password: "x", ClientID: "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Login(ctx, tt.input)
			// The error never distinguishes the cause.
			assert.ErrorIs(t, err, autherror.ErrInvalidCredentials)
		})
	}
}

func TestLoginBruteForceEscalation(t *testing.T) {
	ctx := context.Background()
	f := newLoginFixture(t)
	f.signup(t, "test@example.com", "Test123!", false)

	for i := 0; i < 5; i++ {
		_, err := f.service.Login(ctx, dto.LoginInput{
			Email:    "test@example.com",
			Password: "Wrong123!",
			ClientID: "attacker",
		})
		assert.ErrorIs(t, err, autherror.ErrInvalidCredentials)
	}

	t.Run("sixth attempt without captcha is gated", func(t *testing.T) {
		_, err := f.service.Login(ctx, dto.LoginInput{
			Email:    "test@example.com",
			Password: "Test123!",
			ClientID: "attacker",
		})
		assert.ErrorIs(t, err, autherror.ErrRecaptchaRequired)
	})

	t.Run("failed captcha verification is gated", func(t *testing.T) {
		f.captcha.err = errors.New("verification failed")
		_, err := f.service.Login(ctx, dto.LoginInput{
			Email:          "test@example.com",
			Password:       "Test123!",
			ClientID:       "attacker",
			RecaptchaToken: "bad-token",
		})
		assert.ErrorIs(t, err, autherror.ErrRecaptchaRequired)
		f.captcha.err = nil
	})

	t.Run("accepted captcha proceeds to credential evaluation", func(t *testing.T) {
		result, err := f.service.Login(ctx, dto.LoginInput{
			Email:          "test@example.com",
			Password:       "Test123!",
			ClientID:       "attacker",
			RecaptchaToken: "good-token",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, result.Token)
	})

	t.Run("success forgave prior failures", func(t *testing.T) {
		assert.False(t, f.guard.CaptchaRequired("attacker"))
	})

	t.Run("other clients were never gated", func(t *testing.T) {
		result, err := f.service.Login(ctx, dto.LoginInput{
			Email:    "test@example.com",
			Password: "Test123!",
			ClientID: "bystander",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, result.Token)
	})
}

func TestLoginWith2FA(t *testing.T) {
	ctx := context.Background()
	f := newLoginFixture(t)
	f.signup(t, "test@example.com", "Test123!", true)

	result, err := f.service.Login(ctx, dto.LoginInput{
		Email:    "test@example.com",
		Password: "Test123!",
		ClientID: "c",
	})
	require.NoError(t, err)
	assert.True(t, result.TwoFARequired)
	assert.Empty(t, result.Token)
	require.NotEmpty(t, result.LoginAttemptID)
	require.Len(t, f.sender.codes, 1)

	code := f.sender.codes[0]

	t.Run("wrong code", func(t *testing.T) {
		wrong := "000000"
		if code == wrong {
			wrong = "000001"
		}
		_, err := f.service.Verify2FA(ctx, dto.Verify2FAInput{
			Email:          "test@example.com",
			LoginAttemptID: result.LoginAttemptID,
			Code:           wrong,
		})
		assert.ErrorIs(t, err, autherror.ErrCodeMismatch)
	})

	t.Run("correct code issues a token", func(t *testing.T) {
		token, err := f.service.Verify2FA(ctx, dto.Verify2FAInput{
			Email:          "test@example.com",
			LoginAttemptID: result.LoginAttemptID,
			Code:           code,
		})
		require.NoError(t, err)

		claims, err := f.service.VerifyToken(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, "test@example.com", claims.Subject)
	})

	t.Run("replaying the correct code fails", func(t *testing.T) {
		_, err := f.service.Verify2FA(ctx, dto.Verify2FAInput{
			Email:          "test@example.com",
			LoginAttemptID: result.LoginAttemptID,
			Code:           code,
		})
		assert.ErrorIs(t, err, autherror.ErrAlreadyConsumed)
	})

	t.Run("second factor failures never touch the guard", func(t *testing.T) {
		assert.False(t, f.guard.CaptchaRequired("c"))
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	f := newLoginFixture(t)
	f.signup(t, "test@example.com", "Test123!", false)

	result, err := f.service.Login(ctx, dto.LoginInput{
		Email:    "test@example.com",
		Password: "Test123!",
		ClientID: "c",
	})
	require.NoError(t, err)

	require.NoError(t, f.service.Logout(ctx, result.Token))

	_, err = f.service.VerifyToken(ctx, result.Token)
	assert.ErrorIs(t, err, autherror.ErrTokenRevoked)

	// Logging out again is not an error.
	assert.NoError(t, f.service.Logout(ctx, result.Token))
}

func TestDeleteAccount(t *testing.T) {
	ctx := context.Background()
	f := newLoginFixture(t)
	f.signup(t, "test@example.com", "Test123!", false)

	t.Run("wrong password", func(t *testing.T) {
		err := f.service.DeleteAccount(ctx, dto.DeleteAccountInput{
			Email:    "test@example.com",
			Password: "Wrong123!",
		})
		assert.ErrorIs(t, err, autherror.ErrInvalidCredentials)
	})

	t.Run("success", func(t *testing.T) {
		err := f.service.DeleteAccount(ctx, dto.DeleteAccountInput{
			Email:    "test@example.com",
			Password: "Test123!",
		})
		require.NoError(t, err)

		_, err = f.service.Login(ctx, dto.LoginInput{
			Email:    "test@example.com",
			Password: "Test123!",
			ClientID: "c",
		})
		assert.ErrorIs(t, err, autherror.ErrInvalidCredentials)
	})
}
