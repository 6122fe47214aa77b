package models

import (
	"time"

	"github.com/google/uuid"
)

// SalesHistory records one stock sale. UnitPrice and Total are in
// pesewas, captured at sale time so later price edits do not rewrite
// history.
type SalesHistory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UUID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_sales_history_uuid" json:"uuid"`
	UserID    uint      `gorm:"not null;index:idx_sales_history_user_id" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID;references:ID" json:"-"`
	ProductID uint      `gorm:"not null;index:idx_sales_history_product_id" json:"product_id"`
	Product   *Product  `gorm:"foreignKey:ProductID;references:ID" json:"product,omitempty"`

	Quantity  int    `gorm:"not null" json:"quantity"`
	UnitPrice uint64 `gorm:"not null" json:"unit_price"`
	Total     uint64 `gorm:"not null" json:"total"`

	// Margin over cost price at sale time; negative when sold below cost
	Profit int64 `gorm:"not null;default:0" json:"profit"`

	CustomerName  *string `gorm:"size:120" json:"customer_name,omitempty"`
	CustomerPhone *string `gorm:"size:15" json:"customer_phone,omitempty"`

	SoldAt    time.Time `gorm:"not null;index:idx_sales_history_sold_at" json:"sold_at"`
	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (SalesHistory) TableName() string {
	return "sales_history"
}

// SalesDaySummaryRow aggregates the sales of one calendar day.
type SalesDaySummaryRow struct {
	Day     time.Time `json:"day"`
	Count   int64     `json:"count"`
	Revenue uint64    `json:"revenue"`
	Profit  int64     `json:"profit"`
}

// SalesHistoryFilter represents filter criteria for sales queries
type SalesHistoryFilter struct {
	ID         *uint
	UUID       *uuid.UUID
	UserID     *uint
	ProductID  *uint
	SoldAfter  *time.Time
	SoldBefore *time.Time
}
