package repository

import (
	"context"
	"errors"
	"time"

	"github.com/nkwabiz/nkwabiz/models"
	"github.com/nkwabiz/nkwabiz/utils"
	"gorm.io/gorm"
)

// PaymentRepositoryImpl implements PaymentRepository interface
type PaymentRepositoryImpl struct {
	*BaseRepository[models.Payment, models.PaymentFilter]
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &PaymentRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Payment, models.PaymentFilter](db),
	}
}

func (r *PaymentRepositoryImpl) applyFilter(db *gorm.DB, f models.PaymentFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.UUID != nil {
		db = db.Where("uuid = ?", *f.UUID)
	}
	if f.UserID != nil {
		db = db.Where("user_id = ?", *f.UserID)
	}
	if f.Reference != nil {
		db = db.Where("reference = ?", *f.Reference)
	}
	if f.Status != nil {
		db = db.Where("status = ?", *f.Status)
	}
	if f.ExpiresAfter != nil {
		db = db.Where("expiry_date > ?", *f.ExpiresAfter)
	}
	if f.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		db = db.Where("created_at < ?", *f.CreatedBefore)
	}
	return db
}

func (r *PaymentRepositoryImpl) ByFilter(ctx context.Context, filter models.PaymentFilter, orderBy string, limit, offset int) ([]*models.Payment, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Payment{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.Payment
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *PaymentRepositoryImpl) Count(ctx context.Context, filter models.PaymentFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Payment{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PaymentRepositoryImpl) Exists(ctx context.Context, filter models.PaymentFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

// ByReference retrieves a payment by its Paystack reference
func (r *PaymentRepositoryImpl) ByReference(ctx context.Context, reference string) (*models.Payment, error) {
	db := r.getDB(ctx)
	var payment models.Payment
	err := db.Where("reference = ?", reference).Last(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

// Update persists changes to an existing payment
func (r *PaymentRepositoryImpl) Update(ctx context.Context, payment *models.Payment) error {
	db := r.getDB(ctx)
	payment.UpdatedAt = utils.UTCNow()
	return db.Save(payment).Error
}

// MarkSettled flips a pending payment to success. The status guard in
// the WHERE clause makes concurrent settlements claim the row at most
// once.
func (r *PaymentRepositoryImpl) MarkSettled(ctx context.Context, paymentID uint, paidAt, expiryDate time.Time) (bool, error) {
	db := r.getDB(ctx)
	result := db.Model(&models.Payment{}).
		Where("id = ? AND status = ?", paymentID, models.PaymentStatusPending).
		Updates(map[string]any{
			"status":      models.PaymentStatusSuccess,
			"paid_at":     paidAt,
			"expiry_date": expiryDate,
			"updated_at":  utils.UTCNow(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// MarkFailed flips a pending payment to failed under the same guard
func (r *PaymentRepositoryImpl) MarkFailed(ctx context.Context, paymentID uint) (bool, error) {
	db := r.getDB(ctx)
	result := db.Model(&models.Payment{}).
		Where("id = ? AND status = ?", paymentID, models.PaymentStatusPending).
		Updates(map[string]any{
			"status":     models.PaymentStatusFailed,
			"updated_at": utils.UTCNow(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// LatestPremiumGrant returns the newest successful payment still inside
// its premium window, or nil when none exists.
func (r *PaymentRepositoryImpl) LatestPremiumGrant(ctx context.Context, userID uint, now time.Time) (*models.Payment, error) {
	db := r.getDB(ctx)
	var payment models.Payment
	err := db.Where("user_id = ? AND status = ? AND expiry_date > ?", userID, models.PaymentStatusSuccess, now).
		Order("created_at DESC").
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}
