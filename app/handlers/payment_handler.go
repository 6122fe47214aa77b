package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/nkwabiz/nkwabiz/app/dto"
	"github.com/nkwabiz/nkwabiz/app/services"
	businessflow "github.com/nkwabiz/nkwabiz/business_flow"
)

// PaymentHandlerInterface defines the contract for payment handlers
type PaymentHandlerInterface interface {
	Bundles(c fiber.Ctx) error
	Initiate(c fiber.Ctx) error
	Webhook(c fiber.Ctx) error
	Verify(c fiber.Ctx) error
	History(c fiber.Ctx) error
}

// PaymentHandler handles bundle purchase HTTP requests
type PaymentHandler struct {
	paymentFlow businessflow.PaymentFlow
	paystack    services.PaystackClient
	validator   *validator.Validate
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentFlow businessflow.PaymentFlow, paystack services.PaystackClient) *PaymentHandler {
	return &PaymentHandler{
		paymentFlow: paymentFlow,
		paystack:    paystack,
		validator:   validator.New(),
	}
}

// Bundles lists the purchasable SMS bundles
func (h *PaymentHandler) Bundles(c fiber.Ctx) error {
	result := h.paymentFlow.ListBundles(createRequestContext(c, "/api/v1/payments/bundles"))
	return successResponse(c, fiber.StatusOK, "Bundles listed", result)
}

// Initiate starts a bundle purchase
func (h *PaymentHandler) Initiate(c fiber.Ctx) error {
	userID, err := authenticatedUserID(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	var req dto.InitiatePaymentRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	result, err := h.paymentFlow.InitiatePayment(createRequestContext(c, "/api/v1/payments/initiate"), userID, &req, clientMetadata(c))
	if err != nil {
		if businessflow.IsBundleNotFound(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Unknown bundle code", "BUNDLE_NOT_FOUND", nil)
		}
		if businessflow.IsPaymentProviderUnavailable(err) {
			return errorResponse(c, fiber.StatusBadGateway, "Payment provider unavailable", "PAYMENT_PROVIDER_UNAVAILABLE", nil)
		}
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to initiate payment", "PAYMENT_INITIATE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Payment initiated", result)
}

// Webhook receives Paystack's charge events. The HMAC-SHA512 signature
// over the raw body is checked before the payload is trusted.
func (h *PaymentHandler) Webhook(c fiber.Ctx) error {
	signature := c.Get("X-Paystack-Signature")
	body := c.Body()
	if !h.paystack.VerifyWebhookSignature(body, signature) {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid webhook signature", "INVALID_SIGNATURE", nil)
	}

	var event dto.PaymentWebhookEvent
	if err := c.Bind().JSON(&event); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid webhook payload", "INVALID_REQUEST", err.Error())
	}

	if err := h.paymentFlow.ProcessWebhook(createRequestContext(c, "/api/v1/payments/webhook"), &event, clientMetadata(c)); err != nil {
		if businessflow.IsPaymentAlreadyProcessed(err) {
			return successResponse(c, fiber.StatusOK, "Already processed", nil)
		}
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to process webhook", "WEBHOOK_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Webhook processed", nil)
}

// Verify lets the client poll for settlement after checkout
func (h *PaymentHandler) Verify(c fiber.Ctx) error {
	userID, err := authenticatedUserID(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	result, err := h.paymentFlow.VerifyPayment(createRequestContext(c, "/api/v1/payments/verify/:reference"), userID, c.Params("reference"), clientMetadata(c))
	if err != nil {
		if businessflow.IsPaymentNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Payment not found", "PAYMENT_NOT_FOUND", nil)
		}
		if businessflow.IsPaymentProviderUnavailable(err) {
			return errorResponse(c, fiber.StatusBadGateway, "Payment provider unavailable", "PAYMENT_PROVIDER_UNAVAILABLE", nil)
		}
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to verify payment", "PAYMENT_VERIFY_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Payment state loaded", result)
}

// History lists the caller's payments
func (h *PaymentHandler) History(c fiber.Ctx) error {
	userID, err := authenticatedUserID(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 20)

	result, err := h.paymentFlow.PaymentHistory(createRequestContext(c, "/api/v1/payments"), userID, page, pageSize)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Failed to list payments", "PAYMENT_LIST_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Payments listed", result)
}
