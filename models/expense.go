package models

import (
	"time"

	"github.com/google/uuid"
)

// Expense is a recorded business cost, Amount in pesewas.
type Expense struct {
	ID     uint      `gorm:"primaryKey" json:"id"`
	UUID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_expenses_uuid" json:"uuid"`
	UserID uint      `gorm:"not null;index:idx_expenses_user_id" json:"user_id"`
	User   *User     `gorm:"foreignKey:UserID;references:ID" json:"-"`

	Title    string  `gorm:"size:120;not null" json:"title"`
	Category string  `gorm:"size:60;not null;index:idx_expenses_category" json:"category"`
	Amount   uint64  `gorm:"not null" json:"amount"`
	Notes    *string `gorm:"type:text" json:"notes,omitempty"`

	IncurredAt time.Time `gorm:"not null;index:idx_expenses_incurred_at" json:"incurred_at"`
	CreatedAt  time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt  time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (Expense) TableName() string {
	return "expenses"
}

// ExpenseFilter represents filter criteria for expense queries
type ExpenseFilter struct {
	ID             *uint
	UUID           *uuid.UUID
	UserID         *uint
	Category       *string
	IncurredAfter  *time.Time
	IncurredBefore *time.Time
}

// ExpenseSummaryRow is one month of aggregated expenses.
type ExpenseSummaryRow struct {
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Total uint64 `json:"total"`
	Count int    `json:"count"`
}
