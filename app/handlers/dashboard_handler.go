package handlers

import (
	"github.com/gofiber/fiber/v3"
	businessflow "github.com/nkwabiz/nkwabiz/business_flow"
)

// DashboardHandler serves the business overview
type DashboardHandler struct {
	dashboardFlow businessflow.DashboardFlow
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardFlow businessflow.DashboardFlow) *DashboardHandler {
	return &DashboardHandler{dashboardFlow: dashboardFlow}
}

// Overview returns the aggregated figures for the landing screen
func (h *DashboardHandler) Overview(c fiber.Ctx) error {
	userID, err := authenticatedUserID(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	result, err := h.dashboardFlow.Overview(createRequestContext(c, "/api/v1/dashboard"), userID)
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to build dashboard", "DASHBOARD_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Dashboard built", result)
}
