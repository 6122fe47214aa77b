package repository

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nkwabiz/nkwabiz/models"
	testingutil "github.com/nkwabiz/nkwabiz/testing"
	"github.com/nkwabiz/nkwabiz/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMSBalanceOperations(t *testing.T) {
	testDB := testingutil.RequireTestDB(t)
	fixtures := testingutil.NewTestFixtures(testDB)
	ctx := testingutil.CreateTestContext()

	repo := NewUserRepository(testDB.DB)

	t.Run("DebitRejectsOverdraft", func(t *testing.T) {
		user, err := fixtures.CreateTestUser(100)
		require.NoError(t, err)

		balance, err := repo.DebitSMSBalance(ctx, user.ID, 40)
		require.NoError(t, err)
		assert.Equal(t, uint64(60), balance)

		_, err = repo.DebitSMSBalance(ctx, user.ID, 61)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInsufficientSMSBalance)

		stored, err := repo.ByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, uint64(60), stored.SMSBalance)
	})

	t.Run("ClampedDebitFloorsAtZero", func(t *testing.T) {
		user, err := fixtures.CreateTestUser(30)
		require.NoError(t, err)

		balance, err := repo.DebitSMSBalanceClamped(ctx, user.ID, 50)
		require.NoError(t, err)
		assert.Equal(t, uint64(0), balance)
	})

	t.Run("Credit", func(t *testing.T) {
		user, err := fixtures.CreateTestUser(10)
		require.NoError(t, err)

		balance, err := repo.CreditSMSBalance(ctx, user.ID, 2500)
		require.NoError(t, err)
		assert.Equal(t, uint64(2510), balance)
	})
}

func TestAdjustQuantity(t *testing.T) {
	testDB := testingutil.RequireTestDB(t)
	fixtures := testingutil.NewTestFixtures(testDB)
	ctx := testingutil.CreateTestContext()

	repo := NewProductRepository(testDB.DB)

	user, err := fixtures.CreateTestUser(0)
	require.NoError(t, err)
	product, err := fixtures.CreateTestProduct(user.ID, "Palm Oil 1L", 1200, 5)
	require.NoError(t, err)

	require.NoError(t, repo.AdjustQuantity(ctx, product.ID, -3))

	err = repo.AdjustQuantity(ctx, product.ID, -3)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	require.NoError(t, repo.AdjustQuantity(ctx, product.ID, 10))

	stored, err := repo.ByUUID(ctx, product.UUID.String())
	require.NoError(t, err)
	assert.Equal(t, 12, stored.Quantity)
}

func TestExpireStale(t *testing.T) {
	testDB := testingutil.RequireTestDB(t)
	fixtures := testingutil.NewTestFixtures(testDB)
	ctx := testingutil.CreateTestContext()

	repo := NewMessageRepository(testDB.DB)

	user, err := fixtures.CreateTestUser(0)
	require.NoError(t, err)

	stale, err := fixtures.CreateTestMessage(user.ID, models.MessageStatusQueued, 5)
	require.NoError(t, err)
	delivered, err := fixtures.CreateTestMessage(user.ID, models.MessageStatusDelivered, 5)
	require.NoError(t, err)

	// Age both rows past the cutoff
	old := utils.UTCNow().Add(-72 * time.Hour)
	require.NoError(t, testDB.DB.Model(&models.Message{}).
		Where("id IN ?", []uint{stale.ID, delivered.ID}).
		Update("created_at", old).Error)

	fresh, err := fixtures.CreateTestMessage(user.ID, models.MessageStatusPending, 5)
	require.NoError(t, err)

	count, err := repo.ExpireStale(ctx, utils.UTCNow().Add(-48*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	expired, err := repo.ByID(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MessageStatusExpired, expired.Status)
	require.NotNil(t, expired.FailureReason)

	untouched, err := repo.ByID(ctx, delivered.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MessageStatusDelivered, untouched.Status)

	recent, err := repo.ByID(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MessageStatusPending, recent.Status)
}

func TestMarkSettled(t *testing.T) {
	testDB := testingutil.RequireTestDB(t)
	fixtures := testingutil.NewTestFixtures(testDB)
	ctx := testingutil.CreateTestContext()

	repo := NewPaymentRepository(testDB.DB)

	newPending := func(t *testing.T, userID uint) *models.Payment {
		t.Helper()
		bundle := models.SMSBundles["small"]
		payment := &models.Payment{
			UUID:       uuid.New(),
			UserID:     userID,
			Reference:  "ref_" + uuid.New().String()[:8],
			BundleCode: "small",
			Amount:     bundle.Amount,
			Credits:    bundle.Credits,
			Status:     models.PaymentStatusPending,
		}
		require.NoError(t, testDB.DB.Create(payment).Error)
		return payment
	}

	t.Run("OnlyFirstCallClaims", func(t *testing.T) {
		user, err := fixtures.CreateTestUser(0)
		require.NoError(t, err)
		payment := newPending(t, user.ID)

		now := utils.UTCNow()
		claimed, err := repo.MarkSettled(ctx, payment.ID, now, now.AddDate(0, 0, 90))
		require.NoError(t, err)
		assert.True(t, claimed)

		claimed, err = repo.MarkSettled(ctx, payment.ID, now, now.AddDate(0, 0, 90))
		require.NoError(t, err)
		assert.False(t, claimed)

		stored, err := repo.ByID(ctx, payment.ID)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusSuccess, stored.Status)
		require.NotNil(t, stored.PaidAt)
	})

	t.Run("MarkFailedLosesToSettled", func(t *testing.T) {
		user, err := fixtures.CreateTestUser(0)
		require.NoError(t, err)
		payment := newPending(t, user.ID)

		now := utils.UTCNow()
		claimed, err := repo.MarkSettled(ctx, payment.ID, now, now.AddDate(0, 0, 90))
		require.NoError(t, err)
		assert.True(t, claimed)

		claimed, err = repo.MarkFailed(ctx, payment.ID)
		require.NoError(t, err)
		assert.False(t, claimed)

		stored, err := repo.ByID(ctx, payment.ID)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusSuccess, stored.Status)
	})
}
