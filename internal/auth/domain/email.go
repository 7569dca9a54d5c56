package domain

import (
	"regexp"
	"strings"

	autherror "github.com/ironvault/auth-service/internal/errors"
)

// emailPattern rejects empty local or domain parts, a missing TLD and empty
// domain labels ("a@b..c"). It is deliberately stricter than RFC 5322.
var emailPattern = regexp.MustCompile(
	`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)+$`,
)

// Email is a validated, normalized address. Construct it with ParseEmail;
// the zero value is not a valid Email.
type Email struct {
	value string
}

// ParseEmail validates raw against the address grammar and normalizes it to
// lower case. Equality of Email values is equality of the normalized form.
func ParseEmail(raw string) (Email, error) {
	raw = strings.TrimSpace(raw)
	if !emailPattern.MatchString(raw) {
		return Email{}, autherror.ErrInvalidEmail
	}
	return Email{value: strings.ToLower(raw)}, nil
}

// String returns the normalized address.
func (e Email) String() string {
	return e.value
}

// IsZero reports whether e was not produced by ParseEmail.
func (e Email) IsZero() bool {
	return e.value == ""
}
