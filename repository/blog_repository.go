package repository

import (
	"context"
	"errors"

	"github.com/nkwabiz/nkwabiz/models"
	"github.com/nkwabiz/nkwabiz/utils"
	"gorm.io/gorm"
)

// BlogPostRepositoryImpl implements BlogPostRepository interface
type BlogPostRepositoryImpl struct {
	*BaseRepository[models.BlogPost, models.BlogPostFilter]
}

// NewBlogPostRepository creates a new blog post repository
func NewBlogPostRepository(db *gorm.DB) BlogPostRepository {
	return &BlogPostRepositoryImpl{
		BaseRepository: NewBaseRepository[models.BlogPost, models.BlogPostFilter](db),
	}
}

func (r *BlogPostRepositoryImpl) applyFilter(db *gorm.DB, f models.BlogPostFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.UUID != nil {
		db = db.Where("uuid = ?", *f.UUID)
	}
	if f.Slug != nil {
		db = db.Where("slug = ?", *f.Slug)
	}
	if f.IsPublished != nil {
		db = db.Where("is_published = ?", *f.IsPublished)
	}
	return db
}

func (r *BlogPostRepositoryImpl) ByFilter(ctx context.Context, filter models.BlogPostFilter, orderBy string, limit, offset int) ([]*models.BlogPost, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.BlogPost{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.BlogPost
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *BlogPostRepositoryImpl) Count(ctx context.Context, filter models.BlogPostFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.BlogPost{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *BlogPostRepositoryImpl) Exists(ctx context.Context, filter models.BlogPostFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

// BySlug retrieves a post by its slug
func (r *BlogPostRepositoryImpl) BySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	db := r.getDB(ctx)
	var post models.BlogPost
	err := db.Where("slug = ?", slug).Last(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// Update persists changes to an existing post
func (r *BlogPostRepositoryImpl) Update(ctx context.Context, post *models.BlogPost) error {
	db := r.getDB(ctx)
	post.UpdatedAt = utils.UTCNow()
	return db.Save(post).Error
}
