package handler

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ironvault/auth-service/internal/metrics"
)

// RequestLogger logs every request and feeds the latency histogram. Bodies
// are never logged; they carry credentials.
func RequestLogger(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		elapsed := time.Since(start)

		status := c.Response().StatusCode()
		route := c.Route().Path

		metrics.RequestDuration.
			WithLabelValues(route, strconv.Itoa(status)).
			Observe(elapsed.Seconds())

		logger.Info("request",
			zap.String("method", c.Method()),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("elapsed", elapsed),
			zap.String("ip", c.IP()),
		)
		return err
	}
}
