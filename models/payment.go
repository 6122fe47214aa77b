package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	PaymentStatusPending = "pending"
	PaymentStatusSuccess = "success"
	PaymentStatusFailed  = "failed"
)

// SMSBundle is a purchasable prepaid package. Amount is in pesewas;
// Credits is the number of SMS units the bundle buys.
type SMSBundle struct {
	Name         string `json:"name"`
	Credits      uint64 `json:"credits"`
	Amount       uint64 `json:"amount"`
	ValidityDays int    `json:"validity_days"`
}

// SMSBundles are the purchasable packages, keyed by bundle code.
var SMSBundles = map[string]SMSBundle{
	"small":  {Name: "Small", Credits: 500, Amount: 2000, ValidityDays: 30},
	"medium": {Name: "Medium", Credits: 1000, Amount: 4000, ValidityDays: 30},
	"large":  {Name: "Large", Credits: 5000, Amount: 20000, ValidityDays: 60},
	"xl":     {Name: "Extra Large", Credits: 10000, Amount: 40000, ValidityDays: 90},
}

// Payment is a Paystack transaction for an SMS bundle. Reference is the
// Paystack transaction reference; the webhook flips Status exactly once.
type Payment struct {
	ID     uint      `gorm:"primaryKey" json:"id"`
	UUID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_payments_uuid" json:"uuid"`
	UserID uint      `gorm:"not null;index:idx_payments_user_id" json:"user_id"`
	User   *User     `gorm:"foreignKey:UserID;references:ID" json:"-"`

	Reference  string `gorm:"size:64;not null;uniqueIndex:uk_payments_reference" json:"reference"`
	BundleCode string `gorm:"size:16;not null" json:"bundle_code"`
	Amount     uint64 `gorm:"not null" json:"amount"`
	Credits    uint64 `gorm:"not null" json:"credits"`
	Status     string `gorm:"size:16;not null;default:'pending';index:idx_payments_status" json:"status"`

	// Premium access window granted by this payment
	ExpiryDate *time.Time `gorm:"index:idx_payments_expiry_date" json:"expiry_date,omitempty"`

	PaidAt    *time.Time `json:"paid_at,omitempty"`
	CreatedAt time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_payments_created_at" json:"created_at"`
	UpdatedAt time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}

// IsPremiumGrant reports whether this payment currently grants premium access.
func (p *Payment) IsPremiumGrant(now time.Time) bool {
	return p.Status == PaymentStatusSuccess && p.ExpiryDate != nil && p.ExpiryDate.After(now)
}

// PaymentFilter represents filter criteria for payment queries
type PaymentFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	UserID        *uint
	Reference     *string
	Status        *string
	ExpiresAfter  *time.Time
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
