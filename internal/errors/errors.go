package errors

import (
	"errors"
)

// Domain errors shared across stores, services and handlers. Handlers map
// these to HTTP statuses; none of them is fatal to the process.
var (
	ErrInvalidEmail      = errors.New("invalid email address")
	ErrInvalidPassword   = errors.New("password does not meet complexity requirements")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")

	// ErrInvalidCredentials is intentionally generic: it never distinguishes
	// an unknown email from a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrRecaptchaRequired = errors.New("recaptcha required")
	ErrRecaptchaFailed   = errors.New("recaptcha verification failed")

	ErrAttemptNotFound = errors.New("login attempt not found")
	ErrAttemptExpired  = errors.New("login attempt expired")
	ErrEmailMismatch   = errors.New("email does not match login attempt")
	ErrCodeMismatch    = errors.New("incorrect 2FA code")
	ErrAlreadyConsumed = errors.New("login attempt already used")

	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenRevoked = errors.New("token revoked")
)
