// Package models contains domain entities and business models for the platform
package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a business owner account. SMSBalance is the prepaid SMS wallet
// in pesewas; all mutations go through the repository so the balance can
// never go negative.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UUID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_users_uuid" json:"uuid"`
	BusinessName string    `gorm:"size:120;not null" json:"business_name"`
	Email        string    `gorm:"size:255;not null;uniqueIndex:idx_users_email" json:"email"`
	Phone        string    `gorm:"size:15;not null" json:"phone"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"` // Never serialize password hash
	SenderID     string    `gorm:"size:11" json:"sender_id"`

	// Prepaid SMS wallet, pesewas
	SMSBalance uint64 `gorm:"not null;default:0" json:"sms_balance"`

	// Password reset
	ResetToken       *string    `gorm:"size:64;index:idx_users_reset_token" json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`

	IsActive *bool `gorm:"default:true;index:idx_users_is_active" json:"is_active"`

	CreatedAt   time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_users_created_at" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`

	// Relations
	Messages []Message      `gorm:"foreignKey:UserID" json:"-"`
	Products []Product      `gorm:"foreignKey:UserID" json:"-"`
	Payments []Payment      `gorm:"foreignKey:UserID" json:"-"`
	Expenses []Expense      `gorm:"foreignKey:UserID" json:"-"`
	Store    *Store         `gorm:"foreignKey:UserID" json:"store,omitempty"`
	APIKeys  []APIKey       `gorm:"foreignKey:UserID" json:"-"`
	Services []Service      `gorm:"foreignKey:UserID" json:"-"`
	Sales    []SalesHistory `gorm:"foreignKey:UserID" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserFilter represents filter criteria for user queries
type UserFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	Email         *string
	Phone         *string
	ResetToken    *string
	IsActive      *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
