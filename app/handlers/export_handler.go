package handlers

import (
	"github.com/gofiber/fiber/v3"
	businessflow "github.com/nkwabiz/nkwabiz/business_flow"
)

// ExportHandler serves spreadsheet downloads
type ExportHandler struct {
	exportFlow businessflow.ExportFlow
}

// NewExportHandler creates a new export handler
func NewExportHandler(exportFlow businessflow.ExportFlow) *ExportHandler {
	return &ExportHandler{exportFlow: exportFlow}
}

// Products streams the catalog workbook as an attachment
func (h *ExportHandler) Products(c fiber.Ctx) error {
	userID, err := authenticatedUserID(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	filename, data, err := h.exportFlow.ExportProducts(createRequestContext(c, "/api/v1/export/products"), userID)
	if err != nil {
		if businessflow.IsPremiumRequired(err) {
			return errorResponse(c, fiber.StatusForbidden, "Premium bundle required", "PREMIUM_REQUIRED", nil)
		}
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to export products", "EXPORT_FAILED", nil)
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	return c.Send(data)
}

// Sales streams the sales workbook as an attachment
func (h *ExportHandler) Sales(c fiber.Ctx) error {
	userID, err := authenticatedUserID(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	filename, data, err := h.exportFlow.ExportSales(createRequestContext(c, "/api/v1/export/sales"), userID)
	if err != nil {
		if businessflow.IsPremiumRequired(err) {
			return errorResponse(c, fiber.StatusForbidden, "Premium bundle required", "PREMIUM_REQUIRED", nil)
		}
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to export sales", "EXPORT_FAILED", nil)
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	return c.Send(data)
}
