package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is a stock item in a user's inventory. Price and CostPrice are
// in pesewas. Archived products stay queryable for sales history but are
// hidden from the storefront and stock views.
type Product struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UUID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_products_uuid" json:"uuid"`
	UserID      uint      `gorm:"not null;index:idx_products_user_id" json:"user_id"`
	User        *User     `gorm:"foreignKey:UserID;references:ID" json:"-"`
	Name        string    `gorm:"size:120;not null" json:"name"`
	Description *string   `gorm:"type:text" json:"description,omitempty"`
	Category    *string   `gorm:"size:60;index:idx_products_category" json:"category,omitempty"`
	ImageURL    *string   `gorm:"size:512" json:"image_url,omitempty"`

	Price     uint64 `gorm:"not null" json:"price"`
	CostPrice uint64 `gorm:"not null;default:0" json:"cost_price"`
	Quantity  int    `gorm:"not null;default:0" json:"quantity"`

	// Threshold below which the stock view flags the product
	LowStockAlert int `gorm:"not null;default:5" json:"low_stock_alert"`

	IsArchived *bool `gorm:"default:false;index:idx_products_is_archived" json:"is_archived"`
	IsListed   *bool `gorm:"default:true" json:"is_listed"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_products_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	Sales []SalesHistory `gorm:"foreignKey:ProductID" json:"-"`
}

func (Product) TableName() string {
	return "products"
}

// ProductFilter represents filter criteria for product queries
type ProductFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	UserID        *uint
	Name          *string
	Category      *string
	IsArchived    *bool
	IsListed      *bool
	LowStockOnly  *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
