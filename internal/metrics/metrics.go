// Package metrics exposes Prometheus collectors for the authentication
// protocol.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LoginOutcomes counts login attempts by protocol outcome.
	LoginOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_login_outcomes_total",
		Help: "Login attempts by outcome.",
	}, []string{"outcome"})

	// Signups counts signup attempts by result.
	Signups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_signups_total",
		Help: "Signup attempts by result.",
	}, []string{"result"})

	// TokensRevoked counts logout revocations.
	TokensRevoked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auth_tokens_revoked_total",
		Help: "Tokens added to the revocation set.",
	})

	// RequestDuration observes handler latency by route and status.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "auth_http_request_duration_seconds",
		Help:    "HTTP request latency by route and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "status"})
)

// Login outcome label values.
const (
	OutcomeSuccess           = "success"
	Outcome2FARequired       = "2fa_required"
	OutcomeRecaptchaRequired = "recaptcha_required"
	OutcomeInvalid           = "invalid_credentials"
)
