package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ironvault/auth-service/internal/auth/domain"
	"github.com/ironvault/auth-service/internal/auth/repository/memory"
	autherror "github.com/ironvault/auth-service/internal/errors"
)

func newUser(t *testing.T, email, password string) domain.User {
	t.Helper()

	parsedEmail, err := domain.ParseEmail(email)
	require.NoError(t, err)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	return domain.User{Email: parsedEmail, PasswordHash: string(hash)}
}

func TestUserStoreAddAndGet(t *testing.T) {
	ctx := context.Background()
	store := memory.NewUserStore()
	user := newUser(t, "test@example.com", "Test123!")

	require.NoError(t, store.Add(ctx, user))

	got, err := store.Get(ctx, user.Email)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)
	assert.Equal(t, user.PasswordHash, got.PasswordHash)
}

func TestUserStoreDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	store := memory.NewUserStore()
	user := newUser(t, "test@example.com", "Test123!")

	require.NoError(t, store.Add(ctx, user))
	err := store.Add(ctx, user)
	assert.ErrorIs(t, err, autherror.ErrUserAlreadyExists)
}

func TestUserStoreGetUnknown(t *testing.T) {
	ctx := context.Background()
	store := memory.NewUserStore()
	email, err := domain.ParseEmail("nobody@example.com")
	require.NoError(t, err)

	_, err = store.Get(ctx, email)
	assert.ErrorIs(t, err, autherror.ErrUserNotFound)
}

func TestUserStoreValidateCredentials(t *testing.T) {
	ctx := context.Background()
	store := memory.NewUserStore()
	user := newUser(t, "test@example.com", "Test123!")
	require.NoError(t, store.Add(ctx, user))

	goodPassword, err := domain.ParsePassword("Test123!")
	require.NoError(t, err)
	badPassword, err := domain.ParsePassword("Wrong123!")
	require.NoError(t, err)

	t.Run("correct password", func(t *testing.T) {
		ok, err := store.ValidateCredentials(ctx, user.Email, goodPassword)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("wrong password", func(t *testing.T) {
		ok, err := store.ValidateCredentials(ctx, user.Email, badPassword)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("unknown user returns false not error", func(t *testing.T) {
		unknown, err := domain.ParseEmail("nobody@example.com")
		require.NoError(t, err)

		ok, err := store.ValidateCredentials(ctx, unknown, goodPassword)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestUserStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := memory.NewUserStore()
	user := newUser(t, "test@example.com", "Test123!")
	require.NoError(t, store.Add(ctx, user))

	require.NoError(t, store.Delete(ctx, user.Email))

	_, err := store.Get(ctx, user.Email)
	assert.ErrorIs(t, err, autherror.ErrUserNotFound)

	assert.ErrorIs(t, store.Delete(ctx, user.Email), autherror.ErrUserNotFound)
}
