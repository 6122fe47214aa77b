package repository

import (
	"context"
	"errors"

	"github.com/nkwabiz/nkwabiz/models"
	"github.com/nkwabiz/nkwabiz/utils"
	"gorm.io/gorm"
)

// ExpenseRepositoryImpl implements ExpenseRepository interface
type ExpenseRepositoryImpl struct {
	*BaseRepository[models.Expense, models.ExpenseFilter]
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(db *gorm.DB) ExpenseRepository {
	return &ExpenseRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Expense, models.ExpenseFilter](db),
	}
}

func (r *ExpenseRepositoryImpl) applyFilter(db *gorm.DB, f models.ExpenseFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.UUID != nil {
		db = db.Where("uuid = ?", *f.UUID)
	}
	if f.UserID != nil {
		db = db.Where("user_id = ?", *f.UserID)
	}
	if f.Category != nil {
		db = db.Where("category = ?", *f.Category)
	}
	if f.IncurredAfter != nil {
		db = db.Where("incurred_at >= ?", *f.IncurredAfter)
	}
	if f.IncurredBefore != nil {
		db = db.Where("incurred_at < ?", *f.IncurredBefore)
	}
	return db
}

func (r *ExpenseRepositoryImpl) ByFilter(ctx context.Context, filter models.ExpenseFilter, orderBy string, limit, offset int) ([]*models.Expense, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Expense{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.Expense
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ExpenseRepositoryImpl) Count(ctx context.Context, filter models.ExpenseFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Expense{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ExpenseRepositoryImpl) Exists(ctx context.Context, filter models.ExpenseFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

// ByUUID retrieves an expense by UUID
func (r *ExpenseRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.Expense, error) {
	db := r.getDB(ctx)
	var expense models.Expense
	err := db.Where("uuid = ?", uuid).Last(&expense).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &expense, nil
}

// Update persists changes to an existing expense
func (r *ExpenseRepositoryImpl) Update(ctx context.Context, expense *models.Expense) error {
	db := r.getDB(ctx)
	expense.UpdatedAt = utils.UTCNow()
	return db.Save(expense).Error
}

// Delete removes an expense
func (r *ExpenseRepositoryImpl) Delete(ctx context.Context, expenseID uint) error {
	db := r.getDB(ctx)
	return db.Delete(&models.Expense{}, expenseID).Error
}

// MonthlySummary aggregates expenses per calendar month for the last
// months months, newest first.
func (r *ExpenseRepositoryImpl) MonthlySummary(ctx context.Context, userID uint, months int) ([]models.ExpenseSummaryRow, error) {
	db := r.getDB(ctx)

	since := utils.UTCNow().AddDate(0, -months, 0)
	var rows []models.ExpenseSummaryRow
	err := db.Model(&models.Expense{}).
		Select("EXTRACT(YEAR FROM incurred_at)::int AS year, EXTRACT(MONTH FROM incurred_at)::int AS month, SUM(amount) AS total, COUNT(*) AS count").
		Where("user_id = ? AND incurred_at >= ?", userID, since).
		Group("year, month").
		Order("year DESC, month DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
