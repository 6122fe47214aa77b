package models

import (
	"time"

	"github.com/google/uuid"
)

// BlogPost is a published article, addressed by slug.
type BlogPost struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_blog_posts_uuid" json:"uuid"`

	Title    string  `gorm:"size:200;not null" json:"title"`
	Slug     string  `gorm:"size:220;not null;uniqueIndex:uk_blog_posts_slug" json:"slug"`
	Excerpt  *string `gorm:"size:500" json:"excerpt,omitempty"`
	Body     string  `gorm:"type:text;not null" json:"body"`
	Author   string  `gorm:"size:120;not null" json:"author"`
	ImageURL *string `gorm:"size:512" json:"image_url,omitempty"`

	IsPublished *bool      `gorm:"default:false;index:idx_blog_posts_is_published" json:"is_published"`
	PublishedAt *time.Time `gorm:"index:idx_blog_posts_published_at" json:"published_at,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (BlogPost) TableName() string {
	return "blog_posts"
}

// BlogPostFilter represents filter criteria for blog queries
type BlogPostFilter struct {
	ID          *uint
	UUID        *uuid.UUID
	Slug        *string
	IsPublished *bool
}
