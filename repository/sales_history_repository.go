package repository

import (
	"context"
	"time"

	"github.com/nkwabiz/nkwabiz/models"
	"gorm.io/gorm"
)

// SalesHistoryRepositoryImpl implements SalesHistoryRepository interface
type SalesHistoryRepositoryImpl struct {
	*BaseRepository[models.SalesHistory, models.SalesHistoryFilter]
}

// NewSalesHistoryRepository creates a new sales history repository
func NewSalesHistoryRepository(db *gorm.DB) SalesHistoryRepository {
	return &SalesHistoryRepositoryImpl{
		BaseRepository: NewBaseRepository[models.SalesHistory, models.SalesHistoryFilter](db),
	}
}

func (r *SalesHistoryRepositoryImpl) applyFilter(db *gorm.DB, f models.SalesHistoryFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.UUID != nil {
		db = db.Where("uuid = ?", *f.UUID)
	}
	if f.UserID != nil {
		db = db.Where("user_id = ?", *f.UserID)
	}
	if f.ProductID != nil {
		db = db.Where("product_id = ?", *f.ProductID)
	}
	if f.SoldAfter != nil {
		db = db.Where("sold_at >= ?", *f.SoldAfter)
	}
	if f.SoldBefore != nil {
		db = db.Where("sold_at < ?", *f.SoldBefore)
	}
	return db
}

func (r *SalesHistoryRepositoryImpl) ByFilter(ctx context.Context, filter models.SalesHistoryFilter, orderBy string, limit, offset int) ([]*models.SalesHistory, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.SalesHistory{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.SalesHistory
	if err := query.Preload("Product").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *SalesHistoryRepositoryImpl) Count(ctx context.Context, filter models.SalesHistoryFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.SalesHistory{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *SalesHistoryRepositoryImpl) Exists(ctx context.Context, filter models.SalesHistoryFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

// RevenueBetween sums sale totals for a user over a time window
func (r *SalesHistoryRepositoryImpl) RevenueBetween(ctx context.Context, userID uint, from, to time.Time) (uint64, error) {
	db := r.getDB(ctx)
	var total *uint64
	err := db.Model(&models.SalesHistory{}).
		Select("SUM(total)").
		Where("user_id = ? AND sold_at >= ? AND sold_at < ?", userID, from, to).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

// LatestDaySummary aggregates the user's most recent day with sales,
// or nil when they have none.
func (r *SalesHistoryRepositoryImpl) LatestDaySummary(ctx context.Context, userID uint) (*models.SalesDaySummaryRow, error) {
	db := r.getDB(ctx)
	var rows []models.SalesDaySummaryRow
	err := db.Model(&models.SalesHistory{}).
		Select("DATE(sold_at) AS day, COUNT(*) AS count, SUM(total) AS revenue, SUM(profit) AS profit").
		Where("user_id = ?", userID).
		Group("DATE(sold_at)").
		Order("day DESC").
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}
