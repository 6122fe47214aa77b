package models

import (
	"time"

	"github.com/google/uuid"
)

// Service is an offering sold by time or job rather than stock, Price
// in pesewas.
type Service struct {
	ID     uint      `gorm:"primaryKey" json:"id"`
	UUID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_services_uuid" json:"uuid"`
	UserID uint      `gorm:"not null;index:idx_services_user_id" json:"user_id"`
	User   *User     `gorm:"foreignKey:UserID;references:ID" json:"-"`

	Name        string  `gorm:"size:120;not null" json:"name"`
	Description *string `gorm:"type:text" json:"description,omitempty"`
	Price       uint64  `gorm:"not null" json:"price"`

	IsArchived *bool `gorm:"default:false;index:idx_services_is_archived" json:"is_archived"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	Sales []ServiceSale `gorm:"foreignKey:ServiceID" json:"-"`
}

func (Service) TableName() string {
	return "services"
}

// ServiceFilter represents filter criteria for service queries
type ServiceFilter struct {
	ID         *uint
	UUID       *uuid.UUID
	UserID     *uint
	IsArchived *bool
}

// ServiceSale records one rendered service, Amount in pesewas.
type ServiceSale struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UUID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_service_sales_uuid" json:"uuid"`
	UserID    uint      `gorm:"not null;index:idx_service_sales_user_id" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID;references:ID" json:"-"`
	ServiceID uint      `gorm:"not null;index:idx_service_sales_service_id" json:"service_id"`
	Service   *Service  `gorm:"foreignKey:ServiceID;references:ID" json:"service,omitempty"`

	Amount        uint64  `gorm:"not null" json:"amount"`
	CustomerName  *string `gorm:"size:120" json:"customer_name,omitempty"`
	CustomerPhone *string `gorm:"size:15" json:"customer_phone,omitempty"`

	SoldAt    time.Time `gorm:"not null;index:idx_service_sales_sold_at" json:"sold_at"`
	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (ServiceSale) TableName() string {
	return "service_sales"
}

// ServiceSaleFilter represents filter criteria for service sale queries
type ServiceSaleFilter struct {
	ID         *uint
	UUID       *uuid.UUID
	UserID     *uint
	ServiceID  *uint
	SoldAfter  *time.Time
	SoldBefore *time.Time
}
