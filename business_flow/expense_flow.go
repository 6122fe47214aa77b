package businessflow

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nkwabiz/nkwabiz/app/dto"
	"github.com/nkwabiz/nkwabiz/models"
	"github.com/nkwabiz/nkwabiz/repository"
	"github.com/nkwabiz/nkwabiz/utils"
	"gorm.io/gorm"
)

// ExpenseFlow handles expense tracking and the monthly summary
type ExpenseFlow interface {
	CreateExpense(ctx context.Context, userID uint, req *dto.CreateExpenseRequest, metadata *ClientMetadata) (*dto.ExpenseDTO, error)
	UpdateExpense(ctx context.Context, userID uint, expenseUUID string, req *dto.UpdateExpenseRequest, metadata *ClientMetadata) (*dto.ExpenseDTO, error)
	DeleteExpense(ctx context.Context, userID uint, expenseUUID string, metadata *ClientMetadata) error
	ListExpenses(ctx context.Context, userID uint, category string, page, pageSize int) (*dto.ExpenseListResponse, error)
	MonthlySummary(ctx context.Context, userID uint, months int) (*dto.ExpenseSummaryResponse, error)
}

// ExpenseFlowImpl implements the expense business flow
type ExpenseFlowImpl struct {
	expenseRepo repository.ExpenseRepository
	db          *gorm.DB
}

// NewExpenseFlow creates a new expense flow instance
func NewExpenseFlow(expenseRepo repository.ExpenseRepository, db *gorm.DB) ExpenseFlow {
	return &ExpenseFlowImpl{expenseRepo: expenseRepo, db: db}
}

// CreateExpense records an expense; IncurredAt defaults to now
func (e *ExpenseFlowImpl) CreateExpense(ctx context.Context, userID uint, req *dto.CreateExpenseRequest, metadata *ClientMetadata) (*dto.ExpenseDTO, error) {
	now := utils.UTCNow()
	incurredAt := now
	if req.IncurredAt != nil && *req.IncurredAt != "" {
		if t, err := time.Parse(time.RFC3339, *req.IncurredAt); err == nil {
			incurredAt = t.UTC()
		}
	}

	expense := &models.Expense{
		UUID:       uuid.New(),
		UserID:     userID,
		Title:      req.Title,
		Category:   req.Category,
		Amount:     req.Amount,
		Notes:      req.Notes,
		IncurredAt: incurredAt,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := e.expenseRepo.Save(ctx, expense); err != nil {
		return nil, NewBusinessError("EXPENSE_CREATE_FAILED", "Failed to record expense", err)
	}

	result := toExpenseDTO(*expense)
	return &result, nil
}

// UpdateExpense applies a partial update to an owned expense
func (e *ExpenseFlowImpl) UpdateExpense(ctx context.Context, userID uint, expenseUUID string, req *dto.UpdateExpenseRequest, metadata *ClientMetadata) (*dto.ExpenseDTO, error) {
	expense, err := e.ownedExpense(ctx, userID, expenseUUID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		expense.Title = *req.Title
	}
	if req.Category != nil {
		expense.Category = *req.Category
	}
	if req.Amount != nil {
		expense.Amount = *req.Amount
	}
	if req.Notes != nil {
		expense.Notes = req.Notes
	}
	if req.IncurredAt != nil && *req.IncurredAt != "" {
		if t, err := time.Parse(time.RFC3339, *req.IncurredAt); err == nil {
			expense.IncurredAt = t.UTC()
		}
	}
	expense.UpdatedAt = utils.UTCNow()

	if err := e.expenseRepo.Update(ctx, expense); err != nil {
		return nil, NewBusinessError("EXPENSE_UPDATE_FAILED", "Failed to update expense", err)
	}

	result := toExpenseDTO(*expense)
	return &result, nil
}

// DeleteExpense removes an owned expense
func (e *ExpenseFlowImpl) DeleteExpense(ctx context.Context, userID uint, expenseUUID string, metadata *ClientMetadata) error {
	expense, err := e.ownedExpense(ctx, userID, expenseUUID)
	if err != nil {
		return err
	}
	if err := e.expenseRepo.Delete(ctx, expense.ID); err != nil {
		return NewBusinessError("EXPENSE_DELETE_FAILED", "Failed to delete expense", err)
	}
	return nil
}

// ListExpenses returns a page of expenses, most recent first
func (e *ExpenseFlowImpl) ListExpenses(ctx context.Context, userID uint, category string, page, pageSize int) (*dto.ExpenseListResponse, error) {
	if page < 1 {
		return nil, NewBusinessError("INVALID_FILTER", "Invalid page", ErrInvalidPage)
	}
	if pageSize < 1 || pageSize > 100 {
		return nil, NewBusinessError("INVALID_FILTER", "Invalid page size", ErrInvalidPageSize)
	}

	filter := models.ExpenseFilter{UserID: &userID}
	if category != "" {
		filter.Category = &category
	}

	total, err := e.expenseRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("EXPENSE_LIST_FAILED", "Failed to count expenses", err)
	}

	expenses, err := e.expenseRepo.ByFilter(ctx, filter, "incurred_at DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("EXPENSE_LIST_FAILED", "Failed to list expenses", err)
	}

	out := make([]dto.ExpenseDTO, 0, len(expenses))
	for _, expense := range expenses {
		out = append(out, toExpenseDTO(*expense))
	}

	return &dto.ExpenseListResponse{
		Expenses: out,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// MonthlySummary aggregates expenses per calendar month
func (e *ExpenseFlowImpl) MonthlySummary(ctx context.Context, userID uint, months int) (*dto.ExpenseSummaryResponse, error) {
	if months < 1 || months > 24 {
		months = 12
	}

	rows, err := e.expenseRepo.MonthlySummary(ctx, userID, months)
	if err != nil {
		return nil, NewBusinessError("EXPENSE_SUMMARY_FAILED", "Failed to summarize expenses", err)
	}

	out := make([]dto.ExpenseSummaryDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, dto.ExpenseSummaryDTO{
			Year:  row.Year,
			Month: row.Month,
			Total: row.Total,
			Count: row.Count,
		})
	}
	return &dto.ExpenseSummaryResponse{Months: out}, nil
}

func (e *ExpenseFlowImpl) ownedExpense(ctx context.Context, userID uint, expenseUUID string) (*models.Expense, error) {
	expense, err := e.expenseRepo.ByUUID(ctx, expenseUUID)
	if err != nil {
		return nil, NewBusinessError("EXPENSE_LOOKUP_FAILED", "Failed to load expense", err)
	}
	if expense == nil || expense.UserID != userID {
		return nil, NewBusinessError("EXPENSE_NOT_FOUND", "Expense not found", ErrExpenseNotFound)
	}
	return expense, nil
}

func toExpenseDTO(e models.Expense) dto.ExpenseDTO {
	return dto.ExpenseDTO{
		UUID:       e.UUID.String(),
		Title:      e.Title,
		Category:   e.Category,
		Amount:     e.Amount,
		Notes:      e.Notes,
		IncurredAt: e.IncurredAt.Format(time.RFC3339),
	}
}
