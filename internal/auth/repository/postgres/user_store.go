// Package postgres implements the user store on PostgreSQL. It is the
// persistent substitute for the in-memory reference store and is selected at
// construction time in cmd/main.go.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/ironvault/auth-service/internal/auth/domain"
	autherror "github.com/ironvault/auth-service/internal/errors"
)

const uniqueViolationCode = "23505"

// DB is the subset of pgxpool.Pool used by the store. pgxmock satisfies it
// in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserStore persists users in the users table.
type UserStore struct {
	db DB
}

// NewUserStore constructs a Postgres-backed user store.
func NewUserStore(db DB) *UserStore {
	return &UserStore{db: db}
}

// Add inserts a new user row; a unique violation on email maps to
// ErrUserAlreadyExists.
func (s *UserStore) Add(ctx context.Context, user domain.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO users (email, password_hash, requires_2fa, created_at)
		VALUES ($1, $2, $3, $4)
	`, user.Email.String(), user.PasswordHash, user.Requires2FA, user.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return autherror.ErrUserAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// Get returns the user for email, or ErrUserNotFound.
func (s *UserStore) Get(ctx context.Context, email domain.Email) (*domain.User, error) {
	row := s.db.QueryRow(ctx, `
		SELECT email, password_hash, requires_2fa, created_at
		FROM users
		WHERE email = $1
	`, email.String())

	var (
		rawEmail string
		user     domain.User
	)
	err := row.Scan(&rawEmail, &user.PasswordHash, &user.Requires2FA, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, autherror.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	user.Email, err = domain.ParseEmail(rawEmail)
	if err != nil {
		return nil, fmt.Errorf("stored email %q is invalid: %w", rawEmail, err)
	}
	return &user, nil
}

// ValidateCredentials compares the stored bcrypt hash against password.
// Unknown users pay the same bcrypt cost and yield false, never an error.
func (s *UserStore) ValidateCredentials(ctx context.Context, email domain.Email, password domain.Password) (bool, error) {
	row := s.db.QueryRow(ctx, `
		SELECT password_hash FROM users WHERE email = $1
	`, email.String())

	var hash string
	err := row.Scan(&hash)
	found := true
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		hash = string(dummyHash)
		found = false
	case err != nil:
		return false, fmt.Errorf("load password hash: %w", err)
	}

	compareErr := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password.Expose()))
	return found && compareErr == nil, nil
}

// Delete removes the user row for email.
func (s *UserStore) Delete(ctx context.Context, email domain.Email) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM users WHERE email = $1`, email.String())
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return autherror.ErrUserNotFound
	}
	return nil
}

var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), bcrypt.DefaultCost)
