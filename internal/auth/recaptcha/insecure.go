package recaptcha

import "context"

// InsecureAllowAll accepts every non-empty token without calling the oracle.
// It exists for local development when no site secret is configured; never
// run it in production.
type InsecureAllowAll struct{}

func (InsecureAllowAll) Verify(_ context.Context, token string, _ string) error {
	if token == "" {
		return ErrVerificationFailed
	}
	return nil
}
