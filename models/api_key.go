package models

import (
	"time"

	"github.com/google/uuid"
)

// APIKey grants programmatic access to the developer SMS API. KeyHash
// is the SHA-256 of the issued secret; the plaintext is shown once at
// creation and never stored. KeyPrefix is the first characters of the
// secret, kept for display.
type APIKey struct {
	ID     uint      `gorm:"primaryKey" json:"id"`
	UUID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_api_keys_uuid" json:"uuid"`
	UserID uint      `gorm:"not null;index:idx_api_keys_user_id" json:"user_id"`
	User   *User     `gorm:"foreignKey:UserID;references:ID" json:"-"`

	Name      string `gorm:"size:120;not null" json:"name"`
	KeyHash   string `gorm:"size:64;not null;uniqueIndex:uk_api_keys_key_hash" json:"-"`
	KeyPrefix string `gorm:"size:12;not null" json:"key_prefix"`

	// Requests per minute allowed for this key; 0 means the configured default
	RateLimit int `gorm:"not null;default:0" json:"rate_limit"`

	TotalRequests uint64 `gorm:"not null;default:0" json:"total_requests"`

	// Delivery webhook for messages sent with this key
	WebhookURL    *string `gorm:"size:512" json:"webhook_url,omitempty"`
	WebhookSecret *string `gorm:"size:64" json:"-"`

	IsActive *bool `gorm:"default:true;index:idx_api_keys_is_active" json:"is_active"`

	CreatedAt  time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
}

func (APIKey) TableName() string {
	return "api_keys"
}

// APIKeyFilter represents filter criteria for API key queries
type APIKeyFilter struct {
	ID       *uint
	UUID     *uuid.UUID
	UserID   *uint
	KeyHash  *string
	IsActive *bool
}
