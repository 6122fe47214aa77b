package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/nkwabiz/nkwabiz/app/dto"
	"github.com/nkwabiz/nkwabiz/app/middleware"
	businessflow "github.com/nkwabiz/nkwabiz/business_flow"
)

// SMSHandlerInterface defines the contract for SMS handlers
type SMSHandlerInterface interface {
	Send(c fiber.Ctx) error
	Estimate(c fiber.Ctx) error
	History(c fiber.Ctx) error
	Balance(c fiber.Ctx) error
	DeliveryReport(c fiber.Ctx) error
}

// SMSHandler handles SMS-related HTTP requests
type SMSHandler struct {
	smsFlow      businessflow.SMSFlow
	deliveryFlow businessflow.DeliveryReportFlow
	validator    *validator.Validate
}

// NewSMSHandler creates a new SMS handler
func NewSMSHandler(smsFlow businessflow.SMSFlow, deliveryFlow businessflow.DeliveryReportFlow) *SMSHandler {
	return &SMSHandler{
		smsFlow:      smsFlow,
		deliveryFlow: deliveryFlow,
		validator:    validator.New(),
	}
}

// Send handles a bulk SMS send request
func (h *SMSHandler) Send(c fiber.Ctx) error {
	userID, err := authenticatedUserID(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	var req dto.SendSMSRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	result, err := h.smsFlow.SendSMS(createRequestContext(c, "/api/v1/sms/send"), userID, &req, clientMetadata(c))
	if err != nil {
		return h.sendError(c, err)
	}

	middleware.SMSMessagesTotal.WithLabelValues("accepted").Add(float64(result.Accepted))
	middleware.SMSMessagesTotal.WithLabelValues("rejected").Add(float64(result.Rejected))

	return successResponse(c, fiber.StatusOK, result.Message, result)
}

// Estimate handles a cost calculation request without sending
func (h *SMSHandler) Estimate(c fiber.Ctx) error {
	userID, err := authenticatedUserID(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	var req dto.CostEstimateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	result, err := h.smsFlow.EstimateCost(createRequestContext(c, "/api/v1/sms/estimate"), userID, &req)
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to estimate cost", "ESTIMATE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Cost estimated", result)
}

// History lists the caller's messages
func (h *SMSHandler) History(c fiber.Ctx) error {
	userID, err := authenticatedUserID(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 20)
	status := c.Query("status")

	result, err := h.smsFlow.MessageHistory(createRequestContext(c, "/api/v1/sms/history"), userID, status, page, pageSize)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Failed to list messages", "HISTORY_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Messages listed", result)
}

// Balance returns the wallet state
func (h *SMSHandler) Balance(c fiber.Ctx) error {
	userID, err := authenticatedUserID(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	result, err := h.smsFlow.Balance(createRequestContext(c, "/api/v1/sms/balance"), userID)
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to load balance", "BALANCE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Balance loaded", result)
}

// DeliveryReport receives the provider's delivery callback. Providers
// vary: fields may arrive as a JSON body, a form body, or query
// parameters, over GET or POST, so all three bindings are tried.
func (h *SMSHandler) DeliveryReport(c fiber.Ctx) error {
	var req dto.DeliveryReportRequest
	if c.Method() == fiber.MethodPost && len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			if err := c.Bind().Form(&req); err != nil {
				return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
			}
		}
	}
	if req.ResolveMessageID() == "" {
		if err := c.Bind().Query(&req); err != nil {
			return errorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
		}
	}

	result, err := h.deliveryFlow.ProcessDeliveryReport(createRequestContext(c, "/api/v1/sms/delivery-report"), &req, clientMetadata(c))
	if err != nil {
		switch {
		case businessflow.IsMessageNotFound(err):
			return errorResponse(c, fiber.StatusNotFound, "No message matches the report", "MESSAGE_NOT_FOUND", nil)
		case businessflow.IsReportInvalid(err):
			return errorResponse(c, fiber.StatusBadRequest, "Invalid delivery report", "REPORT_VALIDATION_FAILED", nil)
		default:
			// 5xx so the provider retries the report
			return errorResponse(c, fiber.StatusInternalServerError, "Failed to process delivery report", "REPORT_FAILED", nil)
		}
	}

	middleware.DeliveryReportsTotal.WithLabelValues(result.Result).Inc()

	return successResponse(c, fiber.StatusOK, "Report processed", result)
}

func (h *SMSHandler) sendError(c fiber.Ctx, err error) error {
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
	case businessflow.IsAccountInactive(err):
		return errorResponse(c, fiber.StatusForbidden, "Account is inactive", "ACCOUNT_INACTIVE", nil)
	default:
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to send SMS", "SMS_SEND_FAILED", nil)
	}
}
