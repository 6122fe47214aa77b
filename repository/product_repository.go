package repository

import (
	"context"
	"errors"

	"github.com/nkwabiz/nkwabiz/models"
	"github.com/nkwabiz/nkwabiz/utils"
	"gorm.io/gorm"
)

// ProductRepositoryImpl implements ProductRepository interface
type ProductRepositoryImpl struct {
	*BaseRepository[models.Product, models.ProductFilter]
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &ProductRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Product, models.ProductFilter](db),
	}
}

func (r *ProductRepositoryImpl) applyFilter(db *gorm.DB, f models.ProductFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.UUID != nil {
		db = db.Where("uuid = ?", *f.UUID)
	}
	if f.UserID != nil {
		db = db.Where("user_id = ?", *f.UserID)
	}
	if f.Name != nil {
		db = db.Where("name ILIKE ?", "%"+*f.Name+"%")
	}
	if f.Category != nil {
		db = db.Where("category = ?", *f.Category)
	}
	if f.IsArchived != nil {
		db = db.Where("is_archived = ?", *f.IsArchived)
	}
	if f.IsListed != nil {
		db = db.Where("is_listed = ?", *f.IsListed)
	}
	if f.LowStockOnly != nil && *f.LowStockOnly {
		db = db.Where("quantity <= low_stock_alert")
	}
	if f.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		db = db.Where("created_at < ?", *f.CreatedBefore)
	}
	return db
}

func (r *ProductRepositoryImpl) ByFilter(ctx context.Context, filter models.ProductFilter, orderBy string, limit, offset int) ([]*models.Product, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Product{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.Product
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ProductRepositoryImpl) Count(ctx context.Context, filter models.ProductFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Product{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ProductRepositoryImpl) Exists(ctx context.Context, filter models.ProductFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

// ByUUID retrieves a product by UUID
func (r *ProductRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.Product, error) {
	db := r.getDB(ctx)
	var product models.Product
	err := db.Where("uuid = ?", uuid).Last(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// Update persists changes to an existing product
func (r *ProductRepositoryImpl) Update(ctx context.Context, product *models.Product) error {
	db := r.getDB(ctx)
	product.UpdatedAt = utils.UTCNow()
	return db.Save(product).Error
}

// Archive soft-removes a product from active inventory
func (r *ProductRepositoryImpl) Archive(ctx context.Context, productID uint) error {
	db := r.getDB(ctx)
	return db.Model(&models.Product{}).Where("id = ?", productID).Updates(map[string]any{
		"is_archived": true,
		"is_listed":   false,
		"updated_at":  utils.UTCNow(),
	}).Error
}

// AdjustQuantity moves stock by delta, refusing to go below zero
func (r *ProductRepositoryImpl) AdjustQuantity(ctx context.Context, productID uint, delta int) error {
	db := r.getDB(ctx)
	result := db.Model(&models.Product{}).
		Where("id = ? AND quantity + ? >= 0", productID, delta).
		Updates(map[string]any{
			"quantity":   gorm.Expr("quantity + ?", delta),
			"updated_at": utils.UTCNow(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

// ListLowStock returns active products at or below their alert threshold
func (r *ProductRepositoryImpl) ListLowStock(ctx context.Context, userID uint) ([]*models.Product, error) {
	db := r.getDB(ctx)
	var products []*models.Product
	err := db.Where("user_id = ? AND is_archived = ? AND quantity <= low_stock_alert", userID, false).
		Order("quantity ASC").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}
