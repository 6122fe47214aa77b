package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/nkwabiz/nkwabiz/app/dto"
	businessflow "github.com/nkwabiz/nkwabiz/business_flow"
)

// ProductHandlerInterface defines the contract for product handlers
type ProductHandlerInterface interface {
	Create(c fiber.Ctx) error
	Update(c fiber.Ctx) error
	Archive(c fiber.Ctx) error
	List(c fiber.Ctx) error
	LowStock(c fiber.Ctx) error
	RecordSale(c fiber.Ctx) error
	Sales(c fiber.Ctx) error
	SalesSummary(c fiber.Ctx) error
}

// ProductHandler handles product and stock HTTP requests
type ProductHandler struct {
	productFlow businessflow.ProductFlow
	validator   *validator.Validate
}

// NewProductHandler creates a new product handler
func NewProductHandler(productFlow businessflow.ProductFlow) *ProductHandler {
	return &ProductHandler{
		productFlow: productFlow,
		validator:   validator.New(),
	}
}

// Create adds a product to the catalog
func (h *ProductHandler) Create(c fiber.Ctx) error {
	userID, err := authenticatedUserID(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	var req dto.CreateProductRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	result, err := h.productFlow.CreateProduct(createRequestContext(c, "/api/v1/products"), userID, &req, clientMetadata(c))
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to create product", "PRODUCT_CREATE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusCreated, "Product created", result)
}

// Update applies a partial update
func (h *ProductHandler) Update(c fiber.Ctx) error {
	userID, err := authenticatedUserID(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	var req dto.UpdateProductRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	result, err := h.productFlow.UpdateProduct(createRequestContext(c, "/api/v1/products/:uuid"), userID, c.Params("uuid"), &req, clientMetadata(c))
	if err != nil {
		return h.productError(c, err, "PRODUCT_UPDATE_FAILED", "Failed to update product")
	}

	return successResponse(c, fiber.StatusOK, "Product updated", result)
}

// Archive hides a product from listings
func (h *ProductHandler) Archive(c fiber.Ctx) error {
	userID, err := authenticatedUserID(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	if err := h.productFlow.ArchiveProduct(createRequestContext(c, "/api/v1/products/:uuid/archive"), userID, c.Params("uuid"), clientMetadata(c)); err != nil {
		return h.productError(c, err, "PRODUCT_ARCHIVE_FAILED", "Failed to archive product")
	}

	return successResponse(c, fiber.StatusOK, "Product archived", nil)
}

// List returns a page of products
func (h *ProductHandler) List(c fiber.Ctx) error {
	userID, err := authenticatedUserID(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 20)
	name := c.Query("name")
	includeArchived := c.Query("include_archived") == "true"

	result, err := h.productFlow.ListProducts(createRequestContext(c, "/api/v1/products"), userID, name, includeArchived, page, pageSize)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Failed to list products", "PRODUCT_LIST_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Products listed", result)
}

// LowStock lists products at or below their alert threshold
func (h *ProductHandler) LowStock(c fiber.Ctx) error {
	userID, err := authenticatedUserID(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	result, err := h.productFlow.ListLowStock(createRequestContext(c, "/api/v1/products/low-stock"), userID)
	if err != nil {
		if businessflow.IsPremiumRequired(err) {
			return errorResponse(c, fiber.StatusForbidden, "Premium bundle required", "PREMIUM_REQUIRED", nil)
		}
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to list low stock", "PRODUCT_LIST_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Low stock listed", result)
}

// RecordSale deducts stock and records the sale
func (h *ProductHandler) RecordSale(c fiber.Ctx) error {
	userID, err := authenticatedUserID(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	var req dto.RecordSaleRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	result, err := h.productFlow.RecordSale(createRequestContext(c, "/api/v1/sales"), userID, &req, clientMetadata(c))
	if err != nil {
		if businessflow.IsInsufficientStock(err) {
			return errorResponse(c, fiber.StatusConflict, "Not enough stock for this sale", "INSUFFICIENT_STOCK", nil)
		}
		return h.productError(c, err, "SALE_RECORD_FAILED", "Failed to record sale")
	}

	return successResponse(c, fiber.StatusCreated, "Sale recorded", result)
}

// Sales lists the caller's sales history
func (h *ProductHandler) Sales(c fiber.Ctx) error {
	userID, err := authenticatedUserID(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 20)

	result, err := h.productFlow.SalesHistory(createRequestContext(c, "/api/v1/sales"), userID, page, pageSize)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Failed to list sales", "SALES_LIST_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Sales listed", result)
}

// SalesSummary reports the latest day with sales
func (h *ProductHandler) SalesSummary(c fiber.Ctx) error {
	userID, err := authenticatedUserID(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	result, err := h.productFlow.SalesSummary(createRequestContext(c, "/api/v1/sales/summary"), userID)
	if err != nil {
		if businessflow.IsPremiumRequired(err) {
			return errorResponse(c, fiber.StatusForbidden, "Premium bundle required", "PREMIUM_REQUIRED", nil)
		}
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to summarize sales", "SALES_SUMMARY_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Sales summary", result)
}

func (h *ProductHandler) productError(c fiber.Ctx, err error, code, message string) error {
	switch {
	case businessflow.IsProductNotFound(err):
		return errorResponse(c, fiber.StatusNotFound, "Product not found", "PRODUCT_NOT_FOUND", nil)
	case businessflow.IsPremiumRequired(err):
		return errorResponse(c, fiber.StatusForbidden, "Premium bundle required", "PREMIUM_REQUIRED", nil)
	default:
		return errorResponse(c, fiber.StatusInternalServerError, message, code, nil)
	}
}
