package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ironvault/auth-service/internal/auth/dto"
	"github.com/ironvault/auth-service/internal/auth/service"
	autherror "github.com/ironvault/auth-service/internal/errors"
	"github.com/ironvault/auth-service/internal/metrics"
)

// AuthHandler recovers domain errors at the HTTP boundary and maps them to
// statuses per the protocol: 400 validation, 401 authentication, 409
// conflict, 428 CAPTCHA escalation.
type AuthHandler struct {
	loginService *service.LoginService

	// clientIDHeader names the proxy-forwarded client identifier used to key
	// the brute-force guard; when absent from the request the socket address
	// is used instead.
	clientIDHeader string
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(loginService *service.LoginService, clientIDHeader string) *AuthHandler {
	return &AuthHandler{loginService: loginService, clientIDHeader: clientIDHeader}
}

// clientID resolves the brute-force guard key for this request.
func (h *AuthHandler) clientID(c *fiber.Ctx) string {
	if h.clientIDHeader != "" {
		if forwarded := c.Get(h.clientIDHeader); forwarded != "" {
			// First hop of a comma-separated forwarding chain.
			if i := strings.IndexByte(forwarded, ','); i >= 0 {
				forwarded = forwarded[:i]
			}
			return strings.TrimSpace(forwarded)
		}
	}
	return c.IP()
}

// Signup handles POST /signup.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var input dto.SignupInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}
	input.ClientIP = c.IP()

	if err := h.loginService.Signup(c.UserContext(), input); err != nil {
		metrics.Signups.WithLabelValues("failure").Inc()
		switch {
		case errors.Is(err, autherror.ErrUserAlreadyExists):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, autherror.ErrInvalidEmail),
			errors.Is(err, autherror.ErrInvalidPassword),
			errors.Is(err, autherror.ErrRecaptchaFailed):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
		}
	}

	metrics.Signups.WithLabelValues("success").Inc()
	return c.Status(fiber.StatusOK).JSON(dto.SignupResponse{Message: "user created successfully"})
}

// Login handles POST /login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input dto.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}
	input.ClientID = h.clientID(c)
	input.ClientIP = c.IP()

	result, err := h.loginService.Login(c.UserContext(), input)
	if err != nil {
		switch {
		case errors.Is(err, autherror.ErrRecaptchaRequired):
			metrics.LoginOutcomes.WithLabelValues(metrics.OutcomeRecaptchaRequired).Inc()
			return c.Status(fiber.StatusPreconditionRequired).
				JSON(dto.RecaptchaRequiredResponse{Status: "recaptcha_required"})
		case errors.Is(err, autherror.ErrInvalidCredentials):
			metrics.LoginOutcomes.WithLabelValues(metrics.OutcomeInvalid).Inc()
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
		}
	}

	if result.TwoFARequired {
		metrics.LoginOutcomes.WithLabelValues(metrics.Outcome2FARequired).Inc()
		return c.Status(fiber.StatusPartialContent).JSON(dto.TwoFARequiredResponse{
			Status:         "2fa_required",
			LoginAttemptID: result.LoginAttemptID,
		})
	}

	metrics.LoginOutcomes.WithLabelValues(metrics.OutcomeSuccess).Inc()
	return c.Status(fiber.StatusOK).JSON(dto.TokenResponse{Token: result.Token})
}

// Verify2FA handles POST /verify-2fa. All mismatches surface as 401; the
// distinct causes stay internal so the endpoint does not aid enumeration.
func (h *AuthHandler) Verify2FA(c *fiber.Ctx) error {
	var input dto.Verify2FAInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}

	token, err := h.loginService.Verify2FA(c.UserContext(), input)
	if err != nil {
		switch {
		case errors.Is(err, autherror.ErrAttemptNotFound),
			errors.Is(err, autherror.ErrAttemptExpired),
			errors.Is(err, autherror.ErrEmailMismatch),
			errors.Is(err, autherror.ErrCodeMismatch),
			errors.Is(err, autherror.ErrAlreadyConsumed):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
		}
	}

	metrics.LoginOutcomes.WithLabelValues(metrics.OutcomeSuccess).Inc()
	return c.Status(fiber.StatusOK).JSON(dto.TokenResponse{Token: token})
}

// VerifyToken handles POST /verify-token.
func (h *AuthHandler) VerifyToken(c *fiber.Ctx) error {
	var input dto.VerifyTokenInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}

	if _, err := h.loginService.VerifyToken(c.UserContext(), input.Token); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusOK)
}

// Logout handles POST /logout. Revoking an already-revoked or expired token
// still answers 200; only a malformed token is an error.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var input dto.LogoutInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}

	if err := h.loginService.Logout(c.UserContext(), input.Token); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	metrics.TokensRevoked.Inc()
	return c.SendStatus(fiber.StatusOK)
}

// DeleteAccount handles POST /delete-account.
func (h *AuthHandler) DeleteAccount(c *fiber.Ctx) error {
	var input dto.DeleteAccountInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}

	if err := h.loginService.DeleteAccount(c.UserContext(), input); err != nil {
		if errors.Is(err, autherror.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "account deleted successfully"})
}
