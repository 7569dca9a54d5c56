package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ironvault/auth-service/internal/auth/domain"
	repo "github.com/ironvault/auth-service/internal/auth/repository/postgres"
	autherror "github.com/ironvault/auth-service/internal/errors"
)

func mustEmail(t *testing.T, raw string) domain.Email {
	t.Helper()
	email, err := domain.ParseEmail(raw)
	require.NoError(t, err)
	return email
}

func TestAdd(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ctx := context.Background()
	store := repo.NewUserStore(mock)
	user := domain.User{
		Email:        mustEmail(t, "new@example.com"),
		PasswordHash: "hash",
		Requires2FA:  true,
		CreatedAt:    time.Now(),
	}

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO users").
			WithArgs(user.Email.String(), user.PasswordHash, user.Requires2FA, user.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		assert.NoError(t, store.Add(ctx, user))
	})

	t.Run("duplicate email", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO users").
			WithArgs(user.Email.String(), user.PasswordHash, user.Requires2FA, user.CreatedAt).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		err := store.Add(ctx, user)
		assert.ErrorIs(t, err, autherror.ErrUserAlreadyExists)
	})

	t.Run("database error", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO users").
			WithArgs(user.Email.String(), user.PasswordHash, user.Requires2FA, user.CreatedAt).
			WillReturnError(fmt.Errorf("db error"))

		assert.Error(t, store.Add(ctx, user))
	})
}

func TestGet(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ctx := context.Background()
	store := repo.NewUserStore(mock)
	email := mustEmail(t, "test@example.com")
	columns := []string{"email", "password_hash", "requires_2fa", "created_at"}

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery("SELECT email, password_hash").
			WithArgs(email.String()).
			WillReturnRows(pgxmock.NewRows(columns).
				AddRow(email.String(), "hash", true, time.Now()))

		user, err := store.Get(ctx, email)
		require.NoError(t, err)
		assert.Equal(t, email, user.Email)
		assert.Equal(t, "hash", user.PasswordHash)
		assert.True(t, user.Requires2FA)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT email, password_hash").
			WithArgs(email.String()).
			WillReturnError(pgx.ErrNoRows)

		_, err := store.Get(ctx, email)
		assert.ErrorIs(t, err, autherror.ErrUserNotFound)
	})

	t.Run("database error", func(t *testing.T) {
		mock.ExpectQuery("SELECT email, password_hash").
			WithArgs(email.String()).
			WillReturnError(fmt.Errorf("db error"))

		_, err := store.Get(ctx, email)
		assert.Error(t, err)
	})
}

func TestValidateCredentials(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ctx := context.Background()
	store := repo.NewUserStore(mock)
	email := mustEmail(t, "test@example.com")
	password, err := domain.ParsePassword("Test123!")
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte(password.Expose()), bcrypt.MinCost)
	require.NoError(t, err)

	t.Run("matching password", func(t *testing.T) {
		mock.ExpectQuery("SELECT password_hash").
			WithArgs(email.String()).
			WillReturnRows(pgxmock.NewRows([]string{"password_hash"}).AddRow(string(hash)))

		ok, err := store.ValidateCredentials(ctx, email, password)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("wrong password", func(t *testing.T) {
		wrong, err := domain.ParsePassword("Wrong123!")
		require.NoError(t, err)

		mock.ExpectQuery("SELECT password_hash").
			WithArgs(email.String()).
			WillReturnRows(pgxmock.NewRows([]string{"password_hash"}).AddRow(string(hash)))

		ok, err := store.ValidateCredentials(ctx, email, wrong)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("unknown user returns false not error", func(t *testing.T) {
		mock.ExpectQuery("SELECT password_hash").
			WithArgs(email.String()).
			WillReturnError(pgx.ErrNoRows)

		ok, err := store.ValidateCredentials(ctx, email, password)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestDelete(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ctx := context.Background()
	store := repo.NewUserStore(mock)
	email := mustEmail(t, "test@example.com")

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM users").
			WithArgs(email.String()).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		assert.NoError(t, store.Delete(ctx, email))
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM users").
			WithArgs(email.String()).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		assert.ErrorIs(t, store.Delete(ctx, email), autherror.ErrUserNotFound)
	})
}
