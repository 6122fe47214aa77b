package repository

import (
	"context"
	"errors"

	"github.com/nkwabiz/nkwabiz/models"
	"github.com/nkwabiz/nkwabiz/utils"
	"gorm.io/gorm"
)

// SMSBatchRepositoryImpl implements SMSBatchRepository interface
type SMSBatchRepositoryImpl struct {
	*BaseRepository[models.SMSBatch, models.SMSBatchFilter]
}

// NewSMSBatchRepository creates a new batch repository
func NewSMSBatchRepository(db *gorm.DB) SMSBatchRepository {
	return &SMSBatchRepositoryImpl{
		BaseRepository: NewBaseRepository[models.SMSBatch, models.SMSBatchFilter](db),
	}
}

func (r *SMSBatchRepositoryImpl) applyFilter(db *gorm.DB, f models.SMSBatchFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.UUID != nil {
		db = db.Where("uuid = ?", *f.UUID)
	}
	if f.UserID != nil {
		db = db.Where("user_id = ?", *f.UserID)
	}
	if f.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		db = db.Where("created_at < ?", *f.CreatedBefore)
	}
	return db
}

func (r *SMSBatchRepositoryImpl) ByFilter(ctx context.Context, filter models.SMSBatchFilter, orderBy string, limit, offset int) ([]*models.SMSBatch, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.SMSBatch{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.SMSBatch
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *SMSBatchRepositoryImpl) Count(ctx context.Context, filter models.SMSBatchFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.SMSBatch{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *SMSBatchRepositoryImpl) Exists(ctx context.Context, filter models.SMSBatchFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

// ByUUID retrieves a batch by UUID
func (r *SMSBatchRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.SMSBatch, error) {
	db := r.getDB(ctx)
	var batch models.SMSBatch
	err := db.Where("uuid = ?", uuid).Last(&batch).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &batch, nil
}

// Update persists changes to an existing batch
func (r *SMSBatchRepositoryImpl) Update(ctx context.Context, batch *models.SMSBatch) error {
	db := r.getDB(ctx)
	batch.UpdatedAt = utils.UTCNow()
	return db.Save(batch).Error
}
