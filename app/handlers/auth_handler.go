package handlers

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/nkwabiz/nkwabiz/app/dto"
	businessflow "github.com/nkwabiz/nkwabiz/business_flow"
)

// AuthHandlerInterface defines the contract for authentication handlers
type AuthHandlerInterface interface {
	Signup(c fiber.Ctx) error
	Login(c fiber.Ctx) error
	RefreshToken(c fiber.Ctx) error
	Logout(c fiber.Ctx) error
	ForgotPassword(c fiber.Ctx) error
	ResetPassword(c fiber.Ctx) error
	ChangePassword(c fiber.Ctx) error
	HealthCheck(c fiber.Ctx) error
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authFlow     businessflow.AuthFlow
	passwordFlow businessflow.PasswordFlow
	validator    *validator.Validate
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authFlow businessflow.AuthFlow, passwordFlow businessflow.PasswordFlow) *AuthHandler {
	handler := &AuthHandler{
		authFlow:     authFlow,
		passwordFlow: passwordFlow,
		validator:    validator.New(),
	}
	handler.setupCustomValidations()
	return handler
}

// Signup handles business account registration
func (h *AuthHandler) Signup(c fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	result, err := h.authFlow.Signup(createRequestContext(c, "/api/v1/auth/signup"), &req, clientMetadata(c))
	if err != nil {
		if businessflow.IsEmailAlreadyExists(err) {
			return errorResponse(c, fiber.StatusConflict, "Email already exists", "EMAIL_EXISTS", nil)
		}
		return errorResponse(c, fiber.StatusInternalServerError, "Signup failed", "SIGNUP_FAILED", nil)
	}

	return successResponse(c, fiber.StatusCreated, "Account created", result)
}

// Login handles email and password authentication
func (h *AuthHandler) Login(c fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	result, err := h.authFlow.Login(createRequestContext(c, "/api/v1/auth/login"), &req, clientMetadata(c))
	if err != nil {
		if businessflow.IsIncorrectPassword(err) {
			return errorResponse(c, fiber.StatusUnauthorized, "Invalid email or password", "INVALID_CREDENTIALS", nil)
		}
		if businessflow.IsAccountInactive(err) {
			return errorResponse(c, fiber.StatusForbidden, "Account is inactive", "ACCOUNT_INACTIVE", nil)
		}
		return errorResponse(c, fiber.StatusInternalServerError, "Login failed", "LOGIN_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Login successful", result)
}

// RefreshToken exchanges a refresh token for a new session
func (h *AuthHandler) RefreshToken(c fiber.Ctx) error {
	var req dto.RefreshTokenRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	session, err := h.authFlow.RefreshToken(createRequestContext(c, "/api/v1/auth/refresh"), &req, clientMetadata(c))
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Invalid or expired refresh token", "TOKEN_REFRESH_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Token refreshed", session)
}

// Logout revokes the presented access token
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	token := strings.TrimPrefix(c.Get("Authorization"), "Bearer ")
	if err := h.authFlow.Logout(createRequestContext(c, "/api/v1/auth/logout"), token); err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "Logout failed", "LOGOUT_FAILED", nil)
	}
	return successResponse(c, fiber.StatusOK, "Logged out", nil)
}

// ForgotPassword starts the password reset flow
func (h *AuthHandler) ForgotPassword(c fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	result, err := h.passwordFlow.ForgotPassword(createRequestContext(c, "/api/v1/auth/forgot-password"), &req, clientMetadata(c))
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to process request", "FORGOT_PASSWORD_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, result.Message, nil)
}

// ResetPassword consumes a reset token
func (h *AuthHandler) ResetPassword(c fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	result, err := h.passwordFlow.ResetPassword(createRequestContext(c, "/api/v1/auth/reset-password"), &req, clientMetadata(c))
	if err != nil {
		if businessflow.IsResetTokenInvalid(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Reset token is invalid or expired", "RESET_TOKEN_INVALID", nil)
		}
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to reset password", "RESET_PASSWORD_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, result.Message, nil)
}

// ChangePassword handles an authenticated password change
func (h *AuthHandler) ChangePassword(c fiber.Ctx) error {
	userID, err := authenticatedUserID(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	var req dto.ChangePasswordRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	if err := h.passwordFlow.ChangePassword(createRequestContext(c, "/api/v1/auth/change-password"), userID, &req, clientMetadata(c)); err != nil {
		if businessflow.IsIncorrectPassword(err) {
			return errorResponse(c, fiber.StatusUnauthorized, "Current password is incorrect", "INVALID_CREDENTIALS", nil)
		}
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to change password", "CHANGE_PASSWORD_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Password changed", nil)
}

// HealthCheck reports liveness
func (h *AuthHandler) HealthCheck(c fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   "nkwabiz-api",
	})
}

func (h *AuthHandler) setupCustomValidations() {
	// Password must carry at least one uppercase letter and one digit
	h.validator.RegisterValidation("password_strength", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		hasUpper := false
		hasNumber := false
		for _, char := range value {
			if char >= 'A' && char <= 'Z' {
				hasUpper = true
			}
			if char >= '0' && char <= '9' {
				hasNumber = true
			}
		}
		return hasUpper && hasNumber
	})
}
