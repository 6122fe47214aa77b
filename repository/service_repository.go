package repository

import (
	"context"
	"errors"
	"time"

	"github.com/nkwabiz/nkwabiz/models"
	"github.com/nkwabiz/nkwabiz/utils"
	"gorm.io/gorm"
)

// ServiceRepositoryImpl implements ServiceRepository interface
type ServiceRepositoryImpl struct {
	*BaseRepository[models.Service, models.ServiceFilter]
}

// NewServiceRepository creates a new service repository
func NewServiceRepository(db *gorm.DB) ServiceRepository {
	return &ServiceRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Service, models.ServiceFilter](db),
	}
}

func (r *ServiceRepositoryImpl) applyFilter(db *gorm.DB, f models.ServiceFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.UUID != nil {
		db = db.Where("uuid = ?", *f.UUID)
	}
	if f.UserID != nil {
		db = db.Where("user_id = ?", *f.UserID)
	}
	if f.IsArchived != nil {
		db = db.Where("is_archived = ?", *f.IsArchived)
	}
	return db
}

func (r *ServiceRepositoryImpl) ByFilter(ctx context.Context, filter models.ServiceFilter, orderBy string, limit, offset int) ([]*models.Service, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Service{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.Service
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ServiceRepositoryImpl) Count(ctx context.Context, filter models.ServiceFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Service{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ServiceRepositoryImpl) Exists(ctx context.Context, filter models.ServiceFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

// ByUUID retrieves a service by UUID
func (r *ServiceRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.Service, error) {
	db := r.getDB(ctx)
	var service models.Service
	err := db.Where("uuid = ?", uuid).Last(&service).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &service, nil
}

// Update persists changes to an existing service
func (r *ServiceRepositoryImpl) Update(ctx context.Context, service *models.Service) error {
	db := r.getDB(ctx)
	service.UpdatedAt = utils.UTCNow()
	return db.Save(service).Error
}

// Archive soft-removes a service
func (r *ServiceRepositoryImpl) Archive(ctx context.Context, serviceID uint) error {
	db := r.getDB(ctx)
	return db.Model(&models.Service{}).Where("id = ?", serviceID).Updates(map[string]any{
		"is_archived": true,
		"updated_at":  utils.UTCNow(),
	}).Error
}

// ServiceSaleRepositoryImpl implements ServiceSaleRepository interface
type ServiceSaleRepositoryImpl struct {
	*BaseRepository[models.ServiceSale, models.ServiceSaleFilter]
}

// NewServiceSaleRepository creates a new service sale repository
func NewServiceSaleRepository(db *gorm.DB) ServiceSaleRepository {
	return &ServiceSaleRepositoryImpl{
		BaseRepository: NewBaseRepository[models.ServiceSale, models.ServiceSaleFilter](db),
	}
}

func (r *ServiceSaleRepositoryImpl) applyFilter(db *gorm.DB, f models.ServiceSaleFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.UUID != nil {
		db = db.Where("uuid = ?", *f.UUID)
	}
	if f.UserID != nil {
		db = db.Where("user_id = ?", *f.UserID)
	}
	if f.ServiceID != nil {
		db = db.Where("service_id = ?", *f.ServiceID)
	}
	if f.SoldAfter != nil {
		db = db.Where("sold_at >= ?", *f.SoldAfter)
	}
	if f.SoldBefore != nil {
		db = db.Where("sold_at < ?", *f.SoldBefore)
	}
	return db
}

func (r *ServiceSaleRepositoryImpl) ByFilter(ctx context.Context, filter models.ServiceSaleFilter, orderBy string, limit, offset int) ([]*models.ServiceSale, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ServiceSale{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.ServiceSale
	if err := query.Preload("Service").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ServiceSaleRepositoryImpl) Count(ctx context.Context, filter models.ServiceSaleFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ServiceSale{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ServiceSaleRepositoryImpl) Exists(ctx context.Context, filter models.ServiceSaleFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

// RevenueBetween sums service sale amounts for a user over a time window
func (r *ServiceSaleRepositoryImpl) RevenueBetween(ctx context.Context, userID uint, from, to time.Time) (uint64, error) {
	db := r.getDB(ctx)
	var total *uint64
	err := db.Model(&models.ServiceSale{}).
		Select("SUM(amount)").
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
