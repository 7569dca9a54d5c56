package handler

import (
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes wires the protocol endpoints and the metrics exposition.
func RegisterRoutes(app *fiber.App, h *AuthHandler) {
	app.Post("/signup", h.Signup)
	app.Post("/login", h.Login)
	app.Post("/verify-2fa", h.Verify2FA)
	app.Post("/verify-token", h.VerifyToken)
	app.Post("/logout", h.Logout)
	app.Post("/delete-account", h.DeleteAccount)

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}
