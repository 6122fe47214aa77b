package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/nkwabiz/nkwabiz/app/dto"
	"github.com/nkwabiz/nkwabiz/app/middleware"
	businessflow "github.com/nkwabiz/nkwabiz/business_flow"
	"github.com/nkwabiz/nkwabiz/models"
)

// DeveloperHandlerInterface defines the contract for developer API handlers
type DeveloperHandlerInterface interface {
	CreateKey(c fiber.Ctx) error
	ListKeys(c fiber.Ctx) error
	RevokeKey(c fiber.Ctx) error
	ConfigureWebhook(c fiber.Ctx) error
	DisableWebhook(c fiber.Ctx) error
	Send(c fiber.Ctx) error
	Stats(c fiber.Ctx) error
}

// DeveloperHandler handles the public developer API surface
type DeveloperHandler struct {
	developerFlow businessflow.DeveloperFlow
	smsFlow       businessflow.SMSFlow
	validator     *validator.Validate
}

// NewDeveloperHandler creates a new developer handler
func NewDeveloperHandler(developerFlow businessflow.DeveloperFlow, smsFlow businessflow.SMSFlow) *DeveloperHandler {
	return &DeveloperHandler{
		developerFlow: developerFlow,
		smsFlow:       smsFlow,
		validator:     validator.New(),
	}
}

// CreateKey issues a developer API key for the authenticated user
func (h *DeveloperHandler) CreateKey(c fiber.Ctx) error {
	userID, err := authenticatedUserID(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	var req dto.CreateAPIKeyRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	result, err := h.developerFlow.CreateAPIKey(createRequestContext(c, "/api/v1/developer/keys"), userID, &req, clientMetadata(c))
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to create key", "API_KEY_CREATE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusCreated, result.Message, result)
}

// ListKeys returns the caller's keys without secrets
func (h *DeveloperHandler) ListKeys(c fiber.Ctx) error {
	userID, err := authenticatedUserID(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	result, err := h.developerFlow.ListAPIKeys(createRequestContext(c, "/api/v1/developer/keys"), userID)
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to list keys", "API_KEY_LIST_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Keys listed", result)
}

// RevokeKey deactivates a key
func (h *DeveloperHandler) RevokeKey(c fiber.Ctx) error {
	userID, err := authenticatedUserID(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	if err := h.developerFlow.RevokeAPIKey(createRequestContext(c, "/api/v1/developer/keys/:uuid"), userID, c.Params("uuid"), clientMetadata(c)); err != nil {
		if businessflow.IsAPIKeyNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "API key not found", "API_KEY_NOT_FOUND", nil)
		}
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to revoke key", "API_KEY_REVOKE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Key revoked", nil)
}

// ConfigureWebhook sets the delivery webhook on one of the caller's keys
func (h *DeveloperHandler) ConfigureWebhook(c fiber.Ctx) error {
	userID, err := authenticatedUserID(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	var req dto.ConfigureWebhookRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	result, err := h.developerFlow.ConfigureWebhook(createRequestContext(c, "/api/v1/developer/keys/:uuid/webhook"), userID, c.Params("uuid"), &req, clientMetadata(c))
	if err != nil {
		if businessflow.IsAPIKeyNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "API key not found", "API_KEY_NOT_FOUND", nil)
		}
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to configure webhook", "WEBHOOK_CONFIGURE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, result.Message, result)
}

// DisableWebhook clears the delivery webhook on one of the caller's keys
func (h *DeveloperHandler) DisableWebhook(c fiber.Ctx) error {
	userID, err := authenticatedUserID(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	if err := h.developerFlow.DisableWebhook(createRequestContext(c, "/api/v1/developer/keys/:uuid/webhook"), userID, c.Params("uuid"), clientMetadata(c)); err != nil {
		if businessflow.IsAPIKeyNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "API key not found", "API_KEY_NOT_FOUND", nil)
		}
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to disable webhook", "WEBHOOK_DISABLE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Webhook disabled", nil)
}

// Stats reports usage for the key that authenticated the request
func (h *DeveloperHandler) Stats(c fiber.Ctx) error {
	key, ok := c.Locals("api_key").(*models.APIKey)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "API key required", "MISSING_API_KEY", nil)
	}

	result, err := h.developerFlow.UsageStats(createRequestContext(c, "/api/v1/developer/stats"), key)
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to load usage stats", "API_KEY_STATS_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Usage stats", result)
}

// Send is the key-authenticated bulk send endpoint. The API key
// middleware has already resolved and rate limited the key.
func (h *DeveloperHandler) Send(c fiber.Ctx) error {
	key, ok := c.Locals("api_key").(*models.APIKey)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "API key required", "MISSING_API_KEY", nil)
	}

	var req dto.SendSMSRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	result, err := h.smsFlow.SendSMSWithKey(createRequestContext(c, "/api/v1/developer/sms/send"), key, &req, clientMetadata(c))
	if err != nil {
		switch {
		case businessflow.IsInsufficientFunds(err):
			return errorResponse(c, fiber.StatusForbidden, "Insufficient SMS balance", "INSUFFICIENT_FUNDS", nil)
		case businessflow.IsInvalidRecipients(err):
			return errorResponse(c, fiber.StatusBadRequest, "Batch contains invalid recipients", "INVALID_RECIPIENTS", nil)
		case businessflow.IsNoValidRecipients(err):
			return errorResponse(c, fiber.StatusBadRequest, "No valid recipients", "NO_VALID_RECIPIENTS", nil)
		case businessflow.IsGatewayUnavailable(err):
			return errorResponse(c, fiber.StatusBadGateway, "SMS gateway unavailable", "GATEWAY_UNAVAILABLE", nil)
		case businessflow.IsGatewayRejected(err):
			return errorResponse(c, fiber.StatusBadGateway, "SMS gateway rejected the request", "GATEWAY_REJECTED", nil)
		default:
			return errorResponse(c, fiber.StatusInternalServerError, "Failed to send SMS", "SMS_SEND_FAILED", nil)
		}
	}

	middleware.SMSMessagesTotal.WithLabelValues("accepted").Add(float64(result.Accepted))
	middleware.SMSMessagesTotal.WithLabelValues("rejected").Add(float64(result.Rejected))

	return successResponse(c, fiber.StatusOK, result.Message, result)
}
