package domain

import "time"

// User is a registered account. Email is the unique key; only the bcrypt
// hash of the password is ever held.
type User struct {
	Email        Email
	PasswordHash string
	Requires2FA  bool
	CreatedAt    time.Time
}

// Challenge is a pending second-factor login attempt. Each challenge
// supports exactly one successful verification, ever.
type Challenge struct {
	ID        string
	Email     Email
	Code      string
	CreatedAt time.Time
	ExpiresAt time.Time
	Consumed  bool
}

// Expired reports whether the challenge is past its expiry at the given time.
func (c Challenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// Claims are the verified contents of a bearer token.
type Claims struct {
	Subject   string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
