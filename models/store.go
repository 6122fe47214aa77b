package models

import (
	"time"

	"github.com/google/uuid"
)

// Store is a user's public storefront, addressed by slug. WhatsApp is
// the number customers order through; the storefront renders it as a
// wa.me link.
type Store struct {
	ID     uint      `gorm:"primaryKey" json:"id"`
	UUID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_stores_uuid" json:"uuid"`
	UserID uint      `gorm:"not null;uniqueIndex:uk_stores_user_id" json:"user_id"`
	User   *User     `gorm:"foreignKey:UserID;references:ID" json:"-"`

	Name        string  `gorm:"size:120;not null" json:"name"`
	Slug        string  `gorm:"size:140;not null;uniqueIndex:uk_stores_slug" json:"slug"`
	Description *string `gorm:"type:text" json:"description,omitempty"`
	LogoURL     *string `gorm:"size:512" json:"logo_url,omitempty"`
	WhatsApp    string  `gorm:"size:15;not null" json:"whatsapp"`
	Location    *string `gorm:"size:255" json:"location,omitempty"`

	IsPublished *bool `gorm:"default:true;index:idx_stores_is_published" json:"is_published"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (Store) TableName() string {
	return "stores"
}

// StoreFilter represents filter criteria for store queries
type StoreFilter struct {
	ID          *uint
	UUID        *uuid.UUID
	UserID      *uint
	Slug        *string
	IsPublished *bool
}
