// Package memory provides the reference in-memory store implementations.
// Each store owns its entity set behind an independent reader-writer lock;
// locks are held for single map operations only, never across I/O.
package memory

import (
	"context"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/ironvault/auth-service/internal/auth/domain"
	autherror "github.com/ironvault/auth-service/internal/errors"
)

// dummyHash is compared against when the user does not exist so that
// ValidateCredentials takes the same time either way.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), bcrypt.DefaultCost)

// UserStore is the in-memory reference user store.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

// NewUserStore returns an empty user store.
func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]domain.User)}
}

// Add stores a new user keyed by normalized email.
func (s *UserStore) Add(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := user.Email.String()
	if _, ok := s.users[key]; ok {
		return autherror.ErrUserAlreadyExists
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	s.users[key] = user
	return nil
}

// Get returns the user for email, or ErrUserNotFound.
func (s *UserStore) Get(_ context.Context, email domain.Email) (*domain.User, error) {
	s.mu.RLock()
	user, ok := s.users[email.String()]
	s.mu.RUnlock()

	if !ok {
		return nil, autherror.ErrUserNotFound
	}
	return &user, nil
}

// ValidateCredentials recomputes the password hash and compares. Unknown
// users yield false, not an error, and still pay the bcrypt cost.
func (s *UserStore) ValidateCredentials(_ context.Context, email domain.Email, password domain.Password) (bool, error) {
	s.mu.RLock()
	user, ok := s.users[email.String()]
	s.mu.RUnlock()

	hash := dummyHash
	if ok {
		hash = []byte(user.PasswordHash)
	}

	err := bcrypt.CompareHashAndPassword(hash, []byte(password.Expose()))
	return ok && err == nil, nil
}

// Delete removes the user for email, or reports ErrUserNotFound.
func (s *UserStore) Delete(_ context.Context, email domain.Email) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := email.String()
	if _, ok := s.users[key]; !ok {
		return autherror.ErrUserNotFound
	}
	delete(s.users, key)
	return nil
}
