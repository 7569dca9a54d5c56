// Package delivery hands one-time codes to the out-of-band channel. The
// channel itself (mail relay, SMS gateway) is an external collaborator; the
// reference implementation records the hand-off without the code itself.
package delivery

import (
	"context"

	"go.uber.org/zap"

	"github.com/ironvault/auth-service/internal/auth/domain"
)

// LogSender acknowledges code delivery in the service log. It stands in for
// a real channel in development and tests; the code value is never logged.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender constructs a log-backed sender.
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send records the delivery event.
func (s *LogSender) Send(_ context.Context, email domain.Email, code string) error {
	s.logger.Info("2FA code dispatched",
		zap.String("email", email.String()),
		zap.Int("code_length", len(code)),
	)
	return nil
}
