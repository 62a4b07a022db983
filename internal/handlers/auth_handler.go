package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/taonaire/catalog-backend/internal/dto"
	"github.com/taonaire/catalog-backend/internal/services"
	"github.com/taonaire/catalog-backend/internal/validator"
)

// normalizer is implemented by request DTOs that trim or case-fold input.
type normalizer interface {
	Normalize()
}

type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validator
}

func NewAuthHandler(authService *services.AuthService, validate *validator.Validator) *AuthHandler {
	return &AuthHandler{authService: authService, validate: validate}
}

// bind parses, normalizes and validates a request body. It writes the 400
// or 422 response itself and reports whether the handler should continue.
func (h *AuthHandler) bind(c *fiber.Ctx, req normalizer) (bool, error) {
	if err := c.BodyParser(req); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Invalid request body."))
	}
	req.Normalize()
	if errs := h.validate.Validate(req); errs != nil {
		return false, c.Status(fiber.StatusUnprocessableEntity).JSON(dto.Invalid(errs))
	}
	return true, nil
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	user, err := h.authService.Signup(c.UserContext(), &req)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			return c.Status(fiber.StatusConflict).JSON(dto.Fail("An account with this email already exists."))
		}
		return internalError(c, err, "Failed to create account.")
	}

	return c.Status(fiber.StatusCreated).JSON(dto.OK("Account created successfully.", dto.NewUserResponse(user)))
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	resp, err := h.authService.Login(c.UserContext(), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAccountNotFound):
			return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("Invalid credentials. Account not found."))
		case errors.Is(err, services.ErrGoogleOnlyAccount):
			return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("This account uses Google Sign-In. Please log in with Google."))
		case errors.Is(err, services.ErrWrongPassword):
			return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("Invalid credentials. Wrong password."))
		}
		return internalError(c, err, "Login failed.")
	}

	return c.JSON(dto.OK("Login successful.", resp))
}

func (h *AuthHandler) GoogleLogin(c *fiber.Ctx) error {
	var req dto.GoogleLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Invalid request body."))
	}

	resp, err := h.authService.GoogleLogin(c.UserContext(), req.IDToken)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrIdentityTokenMissing):
			return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Missing required field: idToken."))
		case errors.Is(err, services.ErrIdentityTokenFormat):
			return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Invalid Google ID token format."))
		case errors.Is(err, services.ErrIdentityTokenDecode):
			return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Failed to decode Google ID token."))
		case errors.Is(err, services.ErrIdentityTokenIncomplete):
			return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Google token is missing required fields (sub/email)."))
		}
		return internalError(c, err, "Google login failed.")
	}

	return c.JSON(dto.OK("Google login successful.", resp))
}

func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	if err := h.authService.ForgotPassword(c.UserContext(), &req); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.Fail("Account not found with this email."))
		}
		return internalError(c, err, "Failed to process forgot password request.")
	}

	return c.JSON(dto.OK("OTP has been sent to your email.", nil))
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	if err := h.authService.ResetPassword(c.UserContext(), &req); err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.Fail("Account not found."))
		case errors.Is(err, services.ErrInvalidOTP):
			return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Invalid or expired OTP."))
		}
		return internalError(c, err, "Failed to reset password.")
	}

	return c.JSON(dto.OK("Password has been reset successfully.", nil))
}

func internalError(c *fiber.Ctx, err error, message string) error {
	slog.Error(message,
		"error", err,
		"path", c.Path(),
		"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
	)
	return c.Status(fiber.StatusInternalServerError).JSON(dto.Fail(message))
}
