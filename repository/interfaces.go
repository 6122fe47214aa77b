// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/nkwabiz/nkwabiz/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

// ErrInsufficientSMSBalance is returned when a debit would take a wallet below zero.
var ErrInsufficientSMSBalance = errors.New("insufficient sms balance")

// ErrInsufficientStock is returned when a sale would take stock below zero.
var ErrInsufficientStock = errors.New("insufficient stock")

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// UserRepository defines operations for users and their SMS wallets
type UserRepository interface {
	Repository[models.User, models.UserFilter]
	ByEmail(ctx context.Context, email string) (*models.User, error)
	ByUUID(ctx context.Context, uuid string) (*models.User, error)
	ByResetToken(ctx context.Context, token string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, userID uint, passwordHash string) error
	UpdateLastLogin(ctx context.Context, userID uint, at time.Time) error
	SetResetToken(ctx context.Context, userID uint, token string, expiry time.Time) error
	ClearResetToken(ctx context.Context, userID uint) error

	// Wallet operations. Debits lock the user row and fail with
	// ErrInsufficientSMSBalance rather than going negative.
	DebitSMSBalance(ctx context.Context, userID uint, amount uint64) (uint64, error)
	DebitSMSBalanceClamped(ctx context.Context, userID uint, amount uint64) (uint64, error)
	CreditSMSBalance(ctx context.Context, userID uint, amount uint64) (uint64, error)
}

// MessageRepository defines operations for messages and their state machine
type MessageRepository interface {
	Repository[models.Message, models.MessageFilter]
	ByProviderMessageID(ctx context.Context, providerMessageID string) (*models.Message, error)
	MarkQueued(ctx context.Context, messageID uint, providerMessageID string) error
	MarkFailed(ctx context.Context, messageID uint, reason string) error

	// ApplyDeliveryReport performs the guarded transition from a live
	// status to the reported terminal status. It returns false when no
	// live row matched, either because the message does not exist or
	// because it already reached a terminal state.
	ApplyDeliveryReport(ctx context.Context, providerMessageID, status string, reason *string, deliveredAt *time.Time) (bool, error)
	CountByStatusForKey(ctx context.Context, apiKeyID uint) (map[string]int64, error)

	CountByStatus(ctx context.Context, userID uint) (map[string]int64, error)

	// ExpireStale marks live messages older than the cutoff as expired
	// and returns the number of rows transitioned.
	ExpireStale(ctx context.Context, olderThan time.Time) (int64, error)
}

// SMSBatchRepository defines operations for send batches
type SMSBatchRepository interface {
	Repository[models.SMSBatch, models.SMSBatchFilter]
	ByUUID(ctx context.Context, uuid string) (*models.SMSBatch, error)
	Update(ctx context.Context, batch *models.SMSBatch) error
}

// ProductRepository defines operations for products
type ProductRepository interface {
	Repository[models.Product, models.ProductFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Archive(ctx context.Context, productID uint) error
	AdjustQuantity(ctx context.Context, productID uint, delta int) error
	ListLowStock(ctx context.Context, userID uint) ([]*models.Product, error)
}

// SalesHistoryRepository defines operations for stock sales
type SalesHistoryRepository interface {
	Repository[models.SalesHistory, models.SalesHistoryFilter]
	RevenueBetween(ctx context.Context, userID uint, from, to time.Time) (uint64, error)
	LatestDaySummary(ctx context.Context, userID uint) (*models.SalesDaySummaryRow, error)
}

// PaymentRepository defines operations for bundle payments
type PaymentRepository interface {
	Repository[models.Payment, models.PaymentFilter]
	ByReference(ctx context.Context, reference string) (*models.Payment, error)
	Update(ctx context.Context, payment *models.Payment) error

	// MarkSettled and MarkFailed close a pending payment with a guarded
	// UPDATE; false means another settlement claimed the row first.
	MarkSettled(ctx context.Context, paymentID uint, paidAt, expiryDate time.Time) (bool, error)
	MarkFailed(ctx context.Context, paymentID uint) (bool, error)

	// LatestPremiumGrant returns the most recent successful payment whose
	// expiry is after now, or nil when the user has no premium access.
	LatestPremiumGrant(ctx context.Context, userID uint, now time.Time) (*models.Payment, error)
}

// ExpenseRepository defines operations for expenses
type ExpenseRepository interface {
	Repository[models.Expense, models.ExpenseFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Expense, error)
	Update(ctx context.Context, expense *models.Expense) error
	Delete(ctx context.Context, expenseID uint) error
	MonthlySummary(ctx context.Context, userID uint, months int) ([]models.ExpenseSummaryRow, error)
}

// StoreRepository defines operations for storefronts
type StoreRepository interface {
	Repository[models.Store, models.StoreFilter]
	BySlug(ctx context.Context, slug string) (*models.Store, error)
	ByUserID(ctx context.Context, userID uint) (*models.Store, error)
	Update(ctx context.Context, store *models.Store) error
}

// BlogPostRepository defines operations for blog posts
type BlogPostRepository interface {
	Repository[models.BlogPost, models.BlogPostFilter]
	BySlug(ctx context.Context, slug string) (*models.BlogPost, error)
	Update(ctx context.Context, post *models.BlogPost) error
}

// ServiceRepository defines operations for services
type ServiceRepository interface {
	Repository[models.Service, models.ServiceFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Service, error)
	Update(ctx context.Context, service *models.Service) error
	Archive(ctx context.Context, serviceID uint) error
}

// ServiceSaleRepository defines operations for service sales
type ServiceSaleRepository interface {
	Repository[models.ServiceSale, models.ServiceSaleFilter]
	RevenueBetween(ctx context.Context, userID uint, from, to time.Time) (uint64, error)
}

// APIKeyRepository defines operations for developer API keys
type APIKeyRepository interface {
	Repository[models.APIKey, models.APIKeyFilter]
	ByKeyHash(ctx context.Context, keyHash string) (*models.APIKey, error)
	Update(ctx context.Context, key *models.APIKey) error
	Revoke(ctx context.Context, keyID uint, at time.Time) error
	SetWebhook(ctx context.Context, keyID uint, url, secret *string) error
	TouchLastUsed(ctx context.Context, keyID uint, at time.Time) error
}
