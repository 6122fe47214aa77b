package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/nkwabiz/nkwabiz/app/dto"
	businessflow "github.com/nkwabiz/nkwabiz/business_flow"
)

// ExpenseHandlerInterface defines the contract for expense handlers
type ExpenseHandlerInterface interface {
	Create(c fiber.Ctx) error
	Update(c fiber.Ctx) error
	Delete(c fiber.Ctx) error
	List(c fiber.Ctx) error
	Summary(c fiber.Ctx) error
}

// ExpenseHandler handles expense tracking HTTP requests
type ExpenseHandler struct {
	expenseFlow businessflow.ExpenseFlow
	validator   *validator.Validate
}

// NewExpenseHandler creates a new expense handler
func NewExpenseHandler(expenseFlow businessflow.ExpenseFlow) *ExpenseHandler {
	return &ExpenseHandler{
		expenseFlow: expenseFlow,
		validator:   validator.New(),
	}
}

// Create records an expense
func (h *ExpenseHandler) Create(c fiber.Ctx) error {
	userID, err := authenticatedUserID(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	var req dto.CreateExpenseRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	result, err := h.expenseFlow.CreateExpense(createRequestContext(c, "/api/v1/expenses"), userID, &req, clientMetadata(c))
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to record expense", "EXPENSE_CREATE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusCreated, "Expense recorded", result)
}

// Update applies a partial update
func (h *ExpenseHandler) Update(c fiber.Ctx) error {
	userID, err := authenticatedUserID(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	var req dto.UpdateExpenseRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	result, err := h.expenseFlow.UpdateExpense(createRequestContext(c, "/api/v1/expenses/:uuid"), userID, c.Params("uuid"), &req, clientMetadata(c))
	if err != nil {
		if businessflow.IsExpenseNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Expense not found", "EXPENSE_NOT_FOUND", nil)
		}
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to update expense", "EXPENSE_UPDATE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Expense updated", result)
}

// Delete removes an expense
func (h *ExpenseHandler) Delete(c fiber.Ctx) error {
	userID, err := authenticatedUserID(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	if err := h.expenseFlow.DeleteExpense(createRequestContext(c, "/api/v1/expenses/:uuid"), userID, c.Params("uuid"), clientMetadata(c)); err != nil {
		if businessflow.IsExpenseNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Expense not found", "EXPENSE_NOT_FOUND", nil)
		}
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to delete expense", "EXPENSE_DELETE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Expense deleted", nil)
}

// List returns a page of expenses
func (h *ExpenseHandler) List(c fiber.Ctx) error {
	userID, err := authenticatedUserID(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 20)
	category := c.Query("category")

	result, err := h.expenseFlow.ListExpenses(createRequestContext(c, "/api/v1/expenses"), userID, category, page, pageSize)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Failed to list expenses", "EXPENSE_LIST_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Expenses listed", result)
}

// Summary aggregates expenses by calendar month
func (h *ExpenseHandler) Summary(c fiber.Ctx) error {
	userID, err := authenticatedUserID(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	months := queryInt(c, "months", 12)

	result, err := h.expenseFlow.MonthlySummary(createRequestContext(c, "/api/v1/expenses/summary"), userID, months)
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to summarize expenses", "EXPENSE_SUMMARY_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Summary built", result)
}
