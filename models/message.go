package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Message lifecycle. A message starts pending, becomes queued once the
// provider accepts it, and reaches exactly one terminal state via a
// delivery report. Terminal states never change again.
const (
	MessageStatusPending   = "pending"
	MessageStatusQueued    = "queued"
	MessageStatusDelivered = "delivered"
	MessageStatusFailed    = "failed"
	MessageStatusExpired   = "expired"
)

// IsTerminalMessageStatus reports whether a status admits no further transitions.
func IsTerminalMessageStatus(status string) bool {
	switch status {
	case MessageStatusDelivered, MessageStatusFailed, MessageStatusExpired:
		return true
	}
	return false
}

// Message is a single recipient of an SMS send. ProviderMessageID is the
// provider's identifier used to correlate delivery reports; it is unique
// so a report can address exactly one message.
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UUID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_messages_uuid" json:"uuid"`
	UserID    uint      `gorm:"not null;index:idx_messages_user_id" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID;references:ID" json:"-"`
	BatchID   *uint     `gorm:"index:idx_messages_batch_id" json:"batch_id,omitempty"`
	Batch     *SMSBatch `gorm:"foreignKey:BatchID;references:ID" json:"-"`

	// Set when the message was sent through the developer API; delivery
	// webhooks are routed to this key's endpoint.
	APIKeyID *uint   `gorm:"index:idx_messages_api_key_id" json:"api_key_id,omitempty"`
	APIKey   *APIKey `gorm:"foreignKey:APIKeyID;references:ID" json:"-"`
	Recipient string    `gorm:"size:15;not null;index:idx_messages_recipient" json:"recipient"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	SenderID  string    `gorm:"size:11;not null" json:"sender_id"`
	Parts     int       `gorm:"not null;default:1" json:"parts"`

	// Cost in pesewas for this message (parts * unit cost)
	Cost uint64 `gorm:"not null;default:0" json:"cost"`

	Status            string  `gorm:"size:16;not null;default:'pending';index:idx_messages_status" json:"status"`
	ProviderMessageID *string `gorm:"size:64;uniqueIndex:uk_messages_provider_message_id" json:"provider_message_id,omitempty"`
	FailureReason     *string `gorm:"size:255" json:"failure_reason,omitempty"`

	CreatedAt   time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_messages_created_at" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
}

func (Message) TableName() string {
	return "messages"
}

// MessageFilter represents filter criteria for message queries
type MessageFilter struct {
	ID                *uint
	UUID              *uuid.UUID
	UserID            *uint
	BatchID           *uint
	Recipient         *string
	Status            *string
	ProviderMessageID *string
	CreatedAfter      *time.Time
	CreatedBefore     *time.Time
}

// SMSBatch groups the messages of one send request for reporting.
type SMSBatch struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	UUID       uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:uk_sms_batches_uuid" json:"uuid"`
	UserID     uint           `gorm:"not null;index:idx_sms_batches_user_id" json:"user_id"`
	User       *User          `gorm:"foreignKey:UserID;references:ID" json:"-"`
	Content    string         `gorm:"type:text;not null" json:"content"`
	SenderID   string         `gorm:"size:11;not null" json:"sender_id"`
	Recipients pq.StringArray `gorm:"type:text[];not null" json:"recipients"`
	Accepted   int            `gorm:"not null;default:0" json:"accepted"`
	Rejected   int            `gorm:"not null;default:0" json:"rejected"`

	// Total debited for this batch, pesewas
	TotalCost uint64 `gorm:"not null;default:0" json:"total_cost"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_sms_batches_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	Messages []Message `gorm:"foreignKey:BatchID" json:"messages,omitempty"`
}

func (SMSBatch) TableName() string {
	return "sms_batches"
}

// SMSBatchFilter represents filter criteria for batch queries
type SMSBatchFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	UserID        *uint
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
