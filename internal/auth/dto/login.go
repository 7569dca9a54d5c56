package dto

type LoginInput struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	RecaptchaToken string `json:"recaptchaToken,omitempty"`

	// ClientID keys the brute-force guard: the forwarded client identifier
	// when the proxy supplies one, else the socket address.
	ClientID string `json:"-"`
	ClientIP string `json:"-"`
}

// LoginResult is the orchestrator's answer to a login call. Exactly one of
// Token or LoginAttemptID is set.
type LoginResult struct {
	Token          string
	TwoFARequired  bool
	LoginAttemptID string
}

type TokenResponse struct {
	Token string `json:"token"`
}

type TwoFARequiredResponse struct {
	Status         string `json:"status"`
	LoginAttemptID string `json:"loginAttemptId"`
}

type RecaptchaRequiredResponse struct {
	Status string `json:"status"`
}
