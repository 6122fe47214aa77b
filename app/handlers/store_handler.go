package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/nkwabiz/nkwabiz/app/dto"
	businessflow "github.com/nkwabiz/nkwabiz/business_flow"
)

// StoreHandlerInterface defines the contract for storefront handlers
type StoreHandlerInterface interface {
	Upsert(c fiber.Ctx) error
	Mine(c fiber.Ctx) error
	Public(c fiber.Ctx) error
}

// StoreHandler handles storefront HTTP requests
type StoreHandler struct {
	storeFlow businessflow.StoreFlow
	validator *validator.Validate
}

// NewStoreHandler creates a new store handler
func NewStoreHandler(storeFlow businessflow.StoreFlow) *StoreHandler {
	return &StoreHandler{
		storeFlow: storeFlow,
		validator: validator.New(),
	}
}

// Upsert creates or updates the caller's storefront
func (h *StoreHandler) Upsert(c fiber.Ctx) error {
	userID, err := authenticatedUserID(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	var req dto.UpsertStoreRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	result, err := h.storeFlow.UpsertStore(createRequestContext(c, "/api/v1/store"), userID, &req, clientMetadata(c))
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to save store", "STORE_SAVE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Store saved", result)
}

// Mine returns the caller's storefront
func (h *StoreHandler) Mine(c fiber.Ctx) error {
	userID, err := authenticatedUserID(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	result, err := h.storeFlow.MyStore(createRequestContext(c, "/api/v1/store"), userID)
	if err != nil {
		if businessflow.IsStoreNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Store not found", "STORE_NOT_FOUND", nil)
		}
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to load store", "STORE_LOOKUP_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Store loaded", result)
}

// Public serves the unauthenticated storefront page by slug
func (h *StoreHandler) Public(c fiber.Ctx) error {
	result, err := h.storeFlow.PublicStore(createRequestContext(c, "/store/:slug"), c.Params("slug"))
	if err != nil {
		if businessflow.IsStoreNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Store not found", "STORE_NOT_FOUND", nil)
		}
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to load store", "STORE_LOOKUP_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Store loaded", result)
}
