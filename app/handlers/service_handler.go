package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/nkwabiz/nkwabiz/app/dto"
	businessflow "github.com/nkwabiz/nkwabiz/business_flow"
)

// ServiceHandlerInterface defines the contract for service handlers
type ServiceHandlerInterface interface {
	Create(c fiber.Ctx) error
	Update(c fiber.Ctx) error
	Archive(c fiber.Ctx) error
	List(c fiber.Ctx) error
	RecordSale(c fiber.Ctx) error
	Sales(c fiber.Ctx) error
}

// ServiceHandler handles offered-service HTTP requests
type ServiceHandler struct {
	serviceFlow businessflow.ServiceFlow
	validator   *validator.Validate
}

// NewServiceHandler creates a new service handler
func NewServiceHandler(serviceFlow businessflow.ServiceFlow) *ServiceHandler {
	return &ServiceHandler{
		serviceFlow: serviceFlow,
		validator:   validator.New(),
	}
}

// Create adds a service
func (h *ServiceHandler) Create(c fiber.Ctx) error {
	userID, err := authenticatedUserID(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	var req dto.CreateServiceRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	result, err := h.serviceFlow.CreateService(createRequestContext(c, "/api/v1/services"), userID, &req, clientMetadata(c))
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to create service", "SERVICE_CREATE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusCreated, "Service created", result)
}

// Update applies a partial update
func (h *ServiceHandler) Update(c fiber.Ctx) error {
	userID, err := authenticatedUserID(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	var req dto.UpdateServiceRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	result, err := h.serviceFlow.UpdateService(createRequestContext(c, "/api/v1/services/:uuid"), userID, c.Params("uuid"), &req, clientMetadata(c))
	if err != nil {
		if businessflow.IsServiceNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Service not found", "SERVICE_NOT_FOUND", nil)
		}
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to update service", "SERVICE_UPDATE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Service updated", result)
}

// Archive hides a service
func (h *ServiceHandler) Archive(c fiber.Ctx) error {
	userID, err := authenticatedUserID(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	if err := h.serviceFlow.ArchiveService(createRequestContext(c, "/api/v1/services/:uuid/archive"), userID, c.Params("uuid"), clientMetadata(c)); err != nil {
		if businessflow.IsServiceNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Service not found", "SERVICE_NOT_FOUND", nil)
		}
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to archive service", "SERVICE_ARCHIVE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Service archived", nil)
}

// List returns the caller's services
func (h *ServiceHandler) List(c fiber.Ctx) error {
	userID, err := authenticatedUserID(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	result, err := h.serviceFlow.ListServices(createRequestContext(c, "/api/v1/services"), userID)
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to list services", "SERVICE_LIST_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Services listed", result)
}

// RecordSale records a rendered service
func (h *ServiceHandler) RecordSale(c fiber.Ctx) error {
	userID, err := authenticatedUserID(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	var req dto.RecordServiceSaleRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	result, err := h.serviceFlow.RecordServiceSale(createRequestContext(c, "/api/v1/services/sales"), userID, &req, clientMetadata(c))
	if err != nil {
		if businessflow.IsServiceNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Service not found", "SERVICE_NOT_FOUND", nil)
		}
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to record service sale", "SERVICE_SALE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusCreated, "Service sale recorded", result)
}

// Sales lists service sales
func (h *ServiceHandler) Sales(c fiber.Ctx) error {
	userID, err := authenticatedUserID(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 20)

	result, err := h.serviceFlow.ServiceSales(createRequestContext(c, "/api/v1/services/sales"), userID, page, pageSize)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Failed to list service sales", "SERVICE_SALE_LIST_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Service sales listed", result)
}
