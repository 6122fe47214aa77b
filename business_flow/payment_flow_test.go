package businessflow

import (
	"testing"

	"github.com/google/uuid"
	"github.com/nkwabiz/nkwabiz/app/dto"
	"github.com/nkwabiz/nkwabiz/app/services"
	"github.com/nkwabiz/nkwabiz/models"
	"github.com/nkwabiz/nkwabiz/repository"
	testingutil "github.com/nkwabiz/nkwabiz/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListBundles(t *testing.T) {
	flow := NewPaymentFlow(nil, nil, &services.MockPaystackClient{}, testSMSConfig(), nil)

	resp := flow.ListBundles(testingutil.CreateTestContext())
	require.Len(t, resp.Bundles, len(models.SMSBundles))

	// Ascending by price
	for i := 1; i < len(resp.Bundles); i++ {
		assert.LessOrEqual(t, resp.Bundles[i-1].Amount, resp.Bundles[i].Amount)
	}
}

func createPendingPayment(t *testing.T, testDB *testingutil.TestDB, userID uint, bundleCode string) *models.Payment {
	t.Helper()
	bundle := models.SMSBundles[bundleCode]
	payment := &models.Payment{
		UUID:       uuid.New(),
		UserID:     userID,
		Reference:  "ref_" + uuid.New().String()[:8],
		BundleCode: bundleCode,
		Amount:     bundle.Amount,
		Credits:    bundle.Credits,
		Status:     models.PaymentStatusPending,
	}
	require.NoError(t, testDB.DB.Create(payment).Error)
	return payment
}

func TestProcessWebhook(t *testing.T) {
	testDB := testingutil.RequireTestDB(t)
	fixtures := testingutil.NewTestFixtures(testDB)
	ctx := testingutil.CreateTestContext()

	userRepo := repository.NewUserRepository(testDB.DB)
	paymentRepo := repository.NewPaymentRepository(testDB.DB)
	metadata := NewClientMetadata("127.0.0.1", "paystack")

	t.Run("ChargeSuccessCreditsWallet", func(t *testing.T) {
		user, err := fixtures.CreateTestUser(0)
		require.NoError(t, err)
		payment := createPendingPayment(t, testDB, user.ID, "small")

		paystack := &services.MockPaystackClient{
			VerifyResult: &services.PaystackVerifyResult{
				Status:    "success",
				Reference: payment.Reference,
				Amount:    payment.Amount,
				Currency:  "GHS",
				PaidAt:    "2026-08-30T14:05:00Z",
			},
		}
		flow := NewPaymentFlow(userRepo, paymentRepo, paystack, testSMSConfig(), testDB.DB)

		err = flow.ProcessWebhook(ctx, &dto.PaymentWebhookEvent{
			Event: "charge.success",
			Data:  dto.PaymentWebhookData{Reference: payment.Reference},
		}, metadata)
		require.NoError(t, err)

		// 500 credits at 5 pesewas each
		updated, err := userRepo.ByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, uint64(2500), updated.SMSBalance)

		stored, err := paymentRepo.ByReference(ctx, payment.Reference)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusSuccess, stored.Status)
		assert.NotNil(t, stored.PaidAt)
		assert.NotNil(t, stored.ExpiryDate)

		// Webhook replay does not double-credit
		err = flow.ProcessWebhook(ctx, &dto.PaymentWebhookEvent{
			Event: "charge.success",
			Data:  dto.PaymentWebhookData{Reference: payment.Reference},
		}, metadata)
		require.Error(t, err)
		assert.True(t, IsPaymentAlreadyProcessed(err))

		updated, err = userRepo.ByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, uint64(2500), updated.SMSBalance)
	})

	t.Run("AmountMismatchMarksFailed", func(t *testing.T) {
		user, err := fixtures.CreateTestUser(0)
		require.NoError(t, err)
		payment := createPendingPayment(t, testDB, user.ID, "small")

		paystack := &services.MockPaystackClient{
			VerifyResult: &services.PaystackVerifyResult{
				Status:    "success",
				Reference: payment.Reference,
				Amount:    payment.Amount - 1,
			},
		}
		flow := NewPaymentFlow(userRepo, paymentRepo, paystack, testSMSConfig(), testDB.DB)

		err = flow.ProcessWebhook(ctx, &dto.PaymentWebhookEvent{
			Event: "charge.success",
			Data:  dto.PaymentWebhookData{Reference: payment.Reference},
		}, metadata)
		require.NoError(t, err)

		stored, err := paymentRepo.ByReference(ctx, payment.Reference)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusFailed, stored.Status)

		updated, err := userRepo.ByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, uint64(0), updated.SMSBalance)
	})

	t.Run("IgnoresOtherEvents", func(t *testing.T) {
		flow := NewPaymentFlow(userRepo, paymentRepo, &services.MockPaystackClient{}, testSMSConfig(), testDB.DB)
		err := flow.ProcessWebhook(ctx, &dto.PaymentWebhookEvent{Event: "transfer.success"}, metadata)
		assert.NoError(t, err)
	})

	t.Run("UnknownReference", func(t *testing.T) {
		flow := NewPaymentFlow(userRepo, paymentRepo, &services.MockPaystackClient{}, testSMSConfig(), testDB.DB)
		err := flow.ProcessWebhook(ctx, &dto.PaymentWebhookEvent{
			Event: "charge.success",
			Data:  dto.PaymentWebhookData{Reference: "ref_unknown"},
		}, metadata)
		require.Error(t, err)
		assert.True(t, IsPaymentNotFound(err))
	})
}

func TestInitiatePayment(t *testing.T) {
	testDB := testingutil.RequireTestDB(t)
	fixtures := testingutil.NewTestFixtures(testDB)
	ctx := testingutil.CreateTestContext()

	userRepo := repository.NewUserRepository(testDB.DB)
	paymentRepo := repository.NewPaymentRepository(testDB.DB)

	user, err := fixtures.CreateTestUser(0)
	require.NoError(t, err)

	flow := NewPaymentFlow(userRepo, paymentRepo, &services.MockPaystackClient{}, testSMSConfig(), testDB.DB)

	resp, err := flow.InitiatePayment(ctx, user.ID, &dto.InitiatePaymentRequest{BundleCode: "medium"}, NewClientMetadata("127.0.0.1", "test"))
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Reference)
	assert.NotEmpty(t, resp.AuthorizationURL)
	assert.Equal(t, models.SMSBundles["medium"].Amount, resp.Amount)

	stored, err := paymentRepo.ByReference(ctx, resp.Reference)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, stored.Status)
	assert.Equal(t, "medium", stored.BundleCode)

	_, err = flow.InitiatePayment(ctx, user.ID, &dto.InitiatePaymentRequest{BundleCode: "mega"}, NewClientMetadata("127.0.0.1", "test"))
	require.Error(t, err)
	assert.True(t, IsBundleNotFound(err))
}
