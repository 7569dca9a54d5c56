// Package logger builds the service-wide zap logger.
package logger

import (
	"go.uber.org/zap"
)

// New returns a production logger, or a development one when env is not
// "production".
func New(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
