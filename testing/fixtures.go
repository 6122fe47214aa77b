// Package testing provides test utilities and database setup for integration tests
package testing

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/nkwabiz/nkwabiz/models"
	"github.com/nkwabiz/nkwabiz/utils"
	"golang.org/x/crypto/bcrypt"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestUser creates an active business account with the given SMS balance
func (tf *TestFixtures) CreateTestUser(balance uint64) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("TestPass123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	randomDigits := fmt.Sprintf("%08d", rand.Intn(90000000)+10000000)

	user := &models.User{
		UUID:         uuid.New(),
		BusinessName: "Ama's Provisions",
		Email:        fmt.Sprintf("ama.%s@example.com", randomDigits),
		Phone:        fmt.Sprintf("2332%s", randomDigits),
		PasswordHash: string(hashedPassword),
		SenderID:     "AmasShop",
		SMSBalance:   balance,
		IsActive:     utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create test user: %w", err)
	}
	return user, nil
}

// CreateTestProduct creates a product owned by the user
func (tf *TestFixtures) CreateTestProduct(userID uint, name string, price uint64, quantity int) (*models.Product, error) {
	product := &models.Product{
		UUID:          uuid.New(),
		UserID:        userID,
		Name:          name,
		Price:         price,
		Quantity:      quantity,
		LowStockAlert: 5,
		IsArchived:    utils.ToPtr(false),
		IsListed:      utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create test product: %w", err)
	}
	return product, nil
}

// CreateTestMessage creates a message in the given lifecycle status
func (tf *TestFixtures) CreateTestMessage(userID uint, status string, cost uint64) (*models.Message, error) {
	providerID := uuid.New().String()
	message := &models.Message{
		UUID:              uuid.New(),
		UserID:            userID,
		Recipient:         fmt.Sprintf("23324%07d", rand.Intn(10000000)),
		Content:           "Test message",
		SenderID:          "AmasShop",
		Parts:             1,
		Cost:              cost,
		Status:            status,
		ProviderMessageID: &providerID,
	}

	if err := tf.DB.DB.Create(message).Error; err != nil {
		return nil, fmt.Errorf("failed to create test message: %w", err)
	}
	return message, nil
}

// CreateTestPayment creates a successful bundle payment for the user
func (tf *TestFixtures) CreateTestPayment(userID uint, bundleCode string) (*models.Payment, error) {
	bundle, ok := models.SMSBundles[bundleCode]
	if !ok {
		return nil, fmt.Errorf("unknown bundle %s", bundleCode)
	}

	payment := &models.Payment{
		UUID:       uuid.New(),
		UserID:     userID,
		Reference:  fmt.Sprintf("ref_%s", uuid.New().String()[:8]),
		BundleCode: bundleCode,
		Amount:     bundle.Amount,
		Status:     models.PaymentStatusSuccess,
		PaidAt:     utils.UTCNowPtr(),
		ExpiryDate: utils.UTCNowAddPtr(30 * 24 * time.Hour),
	}

	if err := tf.DB.DB.Create(payment).Error; err != nil {
		return nil, fmt.Errorf("failed to create test payment: %w", err)
	}
	return payment, nil
}
