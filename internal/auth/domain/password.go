package domain

import (
	"unicode"

	autherror "github.com/ironvault/auth-service/internal/errors"
)

const minPasswordLength = 8

// Password is a validated plaintext secret. It exists only in memory during
// signup and login; stores persist bcrypt hashes, never the value itself.
type Password struct {
	value string
}

// ParsePassword enforces the complexity policy: at least 8 characters with
// one uppercase letter, one lowercase letter, one digit and one special
// character each.
func ParsePassword(raw string) (Password, error) {
	if len(raw) < minPasswordLength {
		return Password{}, autherror.ErrInvalidPassword
	}

	var upper, lower, digit, special bool
	for _, r := range raw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}
	if !upper || !lower || !digit || !special {
		return Password{}, autherror.ErrInvalidPassword
	}

	return Password{value: raw}, nil
}

// Expose returns the plaintext for hashing or comparison. Callers must not
// store or log the result.
func (p Password) Expose() string {
	return p.value
}

// String redacts the secret so accidental logging never leaks it.
func (p Password) String() string {
	return "[REDACTED]"
}
