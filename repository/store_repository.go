package repository

import (
	"context"
	"errors"

	"github.com/nkwabiz/nkwabiz/models"
	"github.com/nkwabiz/nkwabiz/utils"
	"gorm.io/gorm"
)

// StoreRepositoryImpl implements StoreRepository interface
type StoreRepositoryImpl struct {
	*BaseRepository[models.Store, models.StoreFilter]
}

// NewStoreRepository creates a new store repository
func NewStoreRepository(db *gorm.DB) StoreRepository {
	return &StoreRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Store, models.StoreFilter](db),
	}
}

func (r *StoreRepositoryImpl) applyFilter(db *gorm.DB, f models.StoreFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.UUID != nil {
		db = db.Where("uuid = ?", *f.UUID)
	}
	if f.UserID != nil {
		db = db.Where("user_id = ?", *f.UserID)
	}
	if f.Slug != nil {
		db = db.Where("slug = ?", *f.Slug)
	}
	if f.IsPublished != nil {
		db = db.Where("is_published = ?", *f.IsPublished)
	}
	return db
}

func (r *StoreRepositoryImpl) ByFilter(ctx context.Context, filter models.StoreFilter, orderBy string, limit, offset int) ([]*models.Store, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Store{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.Store
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *StoreRepositoryImpl) Count(ctx context.Context, filter models.StoreFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Store{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *StoreRepositoryImpl) Exists(ctx context.Context, filter models.StoreFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

// BySlug retrieves a store by its public slug
func (r *StoreRepositoryImpl) BySlug(ctx context.Context, slug string) (*models.Store, error) {
	db := r.getDB(ctx)
	var store models.Store
	err := db.Where("slug = ?", slug).Last(&store).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &store, nil
}

// ByUserID retrieves a user's store
func (r *StoreRepositoryImpl) ByUserID(ctx context.Context, userID uint) (*models.Store, error) {
	db := r.getDB(ctx)
	var store models.Store
	err := db.Where("user_id = ?", userID).Last(&store).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &store, nil
}

// Update persists changes to an existing store
func (r *StoreRepositoryImpl) Update(ctx context.Context, store *models.Store) error {
	db := r.getDB(ctx)
	store.UpdatedAt = utils.UTCNow()
	return db.Save(store).Error
}
