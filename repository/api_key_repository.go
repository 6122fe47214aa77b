package repository

import (
	"context"
	"errors"
	"time"

	"github.com/nkwabiz/nkwabiz/models"
	"github.com/nkwabiz/nkwabiz/utils"
	"gorm.io/gorm"
)

// APIKeyRepositoryImpl implements APIKeyRepository interface
type APIKeyRepositoryImpl struct {
	*BaseRepository[models.APIKey, models.APIKeyFilter]
}

// NewAPIKeyRepository creates a new API key repository
func NewAPIKeyRepository(db *gorm.DB) APIKeyRepository {
	return &APIKeyRepositoryImpl{
		BaseRepository: NewBaseRepository[models.APIKey, models.APIKeyFilter](db),
	}
}

func (r *APIKeyRepositoryImpl) applyFilter(db *gorm.DB, f models.APIKeyFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.UUID != nil {
		db = db.Where("uuid = ?", *f.UUID)
	}
	if f.UserID != nil {
		db = db.Where("user_id = ?", *f.UserID)
	}
	if f.KeyHash != nil {
		db = db.Where("key_hash = ?", *f.KeyHash)
	}
	if f.IsActive != nil {
		db = db.Where("is_active = ?", *f.IsActive)
	}
	return db
}

func (r *APIKeyRepositoryImpl) ByFilter(ctx context.Context, filter models.APIKeyFilter, orderBy string, limit, offset int) ([]*models.APIKey, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.APIKey{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.APIKey
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *APIKeyRepositoryImpl) Count(ctx context.Context, filter models.APIKeyFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.APIKey{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *APIKeyRepositoryImpl) Exists(ctx context.Context, filter models.APIKeyFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

// ByKeyHash retrieves an active key by the SHA-256 of its secret
func (r *APIKeyRepositoryImpl) ByKeyHash(ctx context.Context, keyHash string) (*models.APIKey, error) {
	db := r.getDB(ctx)
	var key models.APIKey
	err := db.Where("key_hash = ? AND is_active = ?", keyHash, true).Last(&key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &key, nil
}

// Update persists changes to an existing key
func (r *APIKeyRepositoryImpl) Update(ctx context.Context, key *models.APIKey) error {
	db := r.getDB(ctx)
	key.UpdatedAt = utils.UTCNow()
	return db.Save(key).Error
}

// Revoke deactivates a key
func (r *APIKeyRepositoryImpl) Revoke(ctx context.Context, keyID uint, at time.Time) error {
	db := r.getDB(ctx)
	return db.Model(&models.APIKey{}).Where("id = ?", keyID).Updates(map[string]any{
		"is_active":  false,
		"revoked_at": at,
		"updated_at": utils.UTCNow(),
	}).Error
}

// SetWebhook updates a key's delivery webhook; nil values clear it
func (r *APIKeyRepositoryImpl) SetWebhook(ctx context.Context, keyID uint, url, secret *string) error {
	db := r.getDB(ctx)
	return db.Model(&models.APIKey{}).Where("id = ?", keyID).Updates(map[string]any{
		"webhook_url":    url,
		"webhook_secret": secret,
		"updated_at":     utils.UTCNow(),
	}).Error
}

// TouchLastUsed records key usage
func (r *APIKeyRepositoryImpl) TouchLastUsed(ctx context.Context, keyID uint, at time.Time) error {
	db := r.getDB(ctx)
	return db.Model(&models.APIKey{}).Where("id = ?", keyID).Updates(map[string]any{
		"last_used_at":   at,
		"total_requests": gorm.Expr("total_requests + 1"),
	}).Error
}
