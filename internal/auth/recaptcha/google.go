// Package recaptcha calls the Google reCAPTCHA verification oracle. The
// service only ever asks "is this token good"; deciding when a token is
// demanded belongs to the brute-force guard.
package recaptcha

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

var (
	ErrVerificationFailed = errors.New("recaptcha verification failed")
	ErrInvalidSecret      = errors.New("invalid recaptcha secret")
)

type verifyResponse struct {
	Success    bool     `json:"success"`
	Hostname   string   `json:"hostname"`
	ErrorCodes []string `json:"error-codes"`
}

// Verifier verifies CAPTCHA tokens against the Google siteverify endpoint.
type Verifier struct {
	secret    string
	verifyURL string
	client    *http.Client
}

// Option customizes a Verifier.
type Option func(*Verifier)

// WithVerifyURL overrides the siteverify endpoint, used by tests.
func WithVerifyURL(u string) Option {
	return func(v *Verifier) { v.verifyURL = u }
}

// NewVerifier constructs a verifier for the given site secret.
func NewVerifier(secret string, opts ...Option) *Verifier {
	v := &Verifier{
		secret:    secret,
		verifyURL: defaultVerifyURL,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify posts the token to the oracle and returns nil when it is accepted.
func (v *Verifier) Verify(ctx context.Context, token string, remoteIP string) error {
	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build siteverify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("call siteverify: %w", err)
	}
	defer resp.Body.Close()

	var body verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decode siteverify response: %w", err)
	}

	if body.Success {
		return nil
	}
	for _, code := range body.ErrorCodes {
		if code == "invalid-input-secret" {
			return ErrInvalidSecret
		}
	}
	return ErrVerificationFailed
}
