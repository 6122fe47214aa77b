package businessflow

import (
	"context"
	"errors"
	"testing"

	"github.com/nkwabiz/nkwabiz/app/dto"
	"github.com/nkwabiz/nkwabiz/app/services"
	"github.com/nkwabiz/nkwabiz/config"
	"github.com/nkwabiz/nkwabiz/models"
	"github.com/nkwabiz/nkwabiz/repository"
	testingutil "github.com/nkwabiz/nkwabiz/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapProviderStatus(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
		ok       bool
	}{
		{raw: "delivered", expected: models.MessageStatusDelivered, ok: true},
		{raw: "DELIVERED", expected: models.MessageStatusDelivered, ok: true},
		{raw: "DELIVRD", expected: models.MessageStatusDelivered, ok: true},
		{raw: "failed", expected: models.MessageStatusFailed, ok: true},
		{raw: "undelivered", expected: models.MessageStatusFailed, ok: true},
		{raw: "undeliverable", expected: models.MessageStatusFailed, ok: true},
		{raw: "rejected", expected: models.MessageStatusFailed, ok: true},
		{raw: "REJECTD", expected: models.MessageStatusFailed, ok: true},
		{raw: "expired", expected: models.MessageStatusExpired, ok: true},
		{raw: " delivered ", expected: models.MessageStatusDelivered, ok: true},
		{raw: "queued", ok: false},
		{raw: "pending", ok: false},
		{raw: "", ok: false},
		{raw: "banana", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := mapProviderStatus(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}

func TestResolveMessageIDAliases(t *testing.T) {
	req := &dto.DeliveryReportRequest{SMSID: "abc", ID: "def"}
	assert.Equal(t, "abc", req.ResolveMessageID())

	req = &dto.DeliveryReportRequest{MessageID: "xyz", SMSID: "abc"}
	assert.Equal(t, "xyz", req.ResolveMessageID())

	req = &dto.DeliveryReportRequest{ID: "def"}
	assert.Equal(t, "def", req.ResolveMessageID())
}

func newDeliveryTestFlow(testDB *testingutil.TestDB, billingPolicy string) DeliveryReportFlow {
	cfg := testSMSConfig()
	cfg.BillingPolicy = billingPolicy
	return NewDeliveryReportFlow(
		repository.NewUserRepository(testDB.DB),
		repository.NewMessageRepository(testDB.DB),
		repository.NewAPIKeyRepository(testDB.DB),
		services.NewWebhookNotifier(&config.DeveloperConfig{}),
		cfg,
		testDB.DB,
	)
}

type failingDebitUserRepo struct {
	repository.UserRepository
}

func (r *failingDebitUserRepo) DebitSMSBalanceClamped(ctx context.Context, userID uint, amount uint64) (uint64, error) {
	return 0, errors.New("debit unavailable")
}

func TestProcessDeliveryReport(t *testing.T) {
	testDB := testingutil.RequireTestDB(t)
	fixtures := testingutil.NewTestFixtures(testDB)
	ctx := testingutil.CreateTestContext()

	messageRepo := repository.NewMessageRepository(testDB.DB)
	metadata := NewClientMetadata("10.0.0.1", "provider")

	t.Run("DeliveredReportAppliesOnce", func(t *testing.T) {
		user, err := fixtures.CreateTestUser(100)
		require.NoError(t, err)
		message, err := fixtures.CreateTestMessage(user.ID, models.MessageStatusQueued, 5)
		require.NoError(t, err)

		flow := newDeliveryTestFlow(testDB, "send")

		resp, err := flow.ProcessDeliveryReport(ctx, &dto.DeliveryReportRequest{
			MessageID:   *message.ProviderMessageID,
			Status:      "delivered",
			DeliveredAt: "2026-08-30 14:05:00",
		}, metadata)
		require.NoError(t, err)
		assert.True(t, resp.Acknowledged)
		assert.Equal(t, models.MessageStatusDelivered, resp.Result)

		stored, err := messageRepo.ByProviderMessageID(ctx, *message.ProviderMessageID)
		require.NoError(t, err)
		assert.Equal(t, models.MessageStatusDelivered, stored.Status)
		assert.NotNil(t, stored.DeliveredAt)

		// Replay acknowledges without mutating anything
		resp, err = flow.ProcessDeliveryReport(ctx, &dto.DeliveryReportRequest{
			MessageID: *message.ProviderMessageID,
			Status:    "failed",
		}, metadata)
		require.NoError(t, err)
		assert.True(t, resp.Acknowledged)
		assert.Equal(t, "already_processed", resp.Result)

		stored, err = messageRepo.ByProviderMessageID(ctx, *message.ProviderMessageID)
		require.NoError(t, err)
		assert.Equal(t, models.MessageStatusDelivered, stored.Status)
	})

	t.Run("FailedReportRecordsReason", func(t *testing.T) {
		user, err := fixtures.CreateTestUser(100)
		require.NoError(t, err)
		message, err := fixtures.CreateTestMessage(user.ID, models.MessageStatusQueued, 5)
		require.NoError(t, err)

		flow := newDeliveryTestFlow(testDB, "send")

		resp, err := flow.ProcessDeliveryReport(ctx, &dto.DeliveryReportRequest{
			SMSID:  *message.ProviderMessageID,
			Status: "undelivered",
			Reason: "absent subscriber",
		}, metadata)
		require.NoError(t, err)
		assert.True(t, resp.Acknowledged)

		stored, err := messageRepo.ByProviderMessageID(ctx, *message.ProviderMessageID)
		require.NoError(t, err)
		assert.Equal(t, models.MessageStatusFailed, stored.Status)
		require.NotNil(t, stored.FailureReason)
		assert.Equal(t, "absent subscriber", *stored.FailureReason)
	})

	t.Run("DeliveryBillingDebitsOnDelivered", func(t *testing.T) {
		user, err := fixtures.CreateTestUser(100)
		require.NoError(t, err)
		message, err := fixtures.CreateTestMessage(user.ID, models.MessageStatusQueued, 5)
		require.NoError(t, err)

		flow := newDeliveryTestFlow(testDB, "delivery")

		_, err = flow.ProcessDeliveryReport(ctx, &dto.DeliveryReportRequest{
			MessageID: *message.ProviderMessageID,
			Status:    "delivered",
		}, metadata)
		require.NoError(t, err)

		userRepo := repository.NewUserRepository(testDB.DB)
		updated, err := userRepo.ByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, uint64(95), updated.SMSBalance)
	})

	t.Run("DeliveryBillingReplayDebitsOnce", func(t *testing.T) {
		user, err := fixtures.CreateTestUser(100)
		require.NoError(t, err)
		message, err := fixtures.CreateTestMessage(user.ID, models.MessageStatusQueued, 5)
		require.NoError(t, err)

		flow := newDeliveryTestFlow(testDB, "delivery")
		userRepo := repository.NewUserRepository(testDB.DB)

		resp, err := flow.ProcessDeliveryReport(ctx, &dto.DeliveryReportRequest{
			MessageID: *message.ProviderMessageID,
			Status:    "delivered",
		}, metadata)
		require.NoError(t, err)
		assert.Equal(t, models.MessageStatusDelivered, resp.Result)

		updated, err := userRepo.ByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, uint64(95), updated.SMSBalance)

		// The provider retrying the same report must not bill again
		resp, err = flow.ProcessDeliveryReport(ctx, &dto.DeliveryReportRequest{
			MessageID: *message.ProviderMessageID,
			Status:    "delivered",
		}, metadata)
		require.NoError(t, err)
		assert.Equal(t, "already_processed", resp.Result)

		updated, err = userRepo.ByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, uint64(95), updated.SMSBalance)
	})

	t.Run("DeliveryBillingClampsAtZero", func(t *testing.T) {
		user, err := fixtures.CreateTestUser(3)
		require.NoError(t, err)
		message, err := fixtures.CreateTestMessage(user.ID, models.MessageStatusQueued, 5)
		require.NoError(t, err)

		flow := newDeliveryTestFlow(testDB, "delivery")

		_, err = flow.ProcessDeliveryReport(ctx, &dto.DeliveryReportRequest{
			MessageID: *message.ProviderMessageID,
			Status:    "delivered",
		}, metadata)
		require.NoError(t, err)

		userRepo := repository.NewUserRepository(testDB.DB)
		updated, err := userRepo.ByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, uint64(0), updated.SMSBalance)
	})

	t.Run("FailedDebitRollsBackTransition", func(t *testing.T) {
		user, err := fixtures.CreateTestUser(100)
		require.NoError(t, err)
		message, err := fixtures.CreateTestMessage(user.ID, models.MessageStatusQueued, 5)
		require.NoError(t, err)

		cfg := testSMSConfig()
		cfg.BillingPolicy = "delivery"
		broken := NewDeliveryReportFlow(
			&failingDebitUserRepo{UserRepository: repository.NewUserRepository(testDB.DB)},
			repository.NewMessageRepository(testDB.DB),
			repository.NewAPIKeyRepository(testDB.DB),
			services.NewWebhookNotifier(&config.DeveloperConfig{}),
			cfg,
			testDB.DB,
		)

		_, err = broken.ProcessDeliveryReport(ctx, &dto.DeliveryReportRequest{
			MessageID: *message.ProviderMessageID,
			Status:    "delivered",
		}, metadata)
		require.Error(t, err)

		// The transition rolled back with the debit, so the provider's
		// retry can apply both
		stored, err := messageRepo.ByProviderMessageID(ctx, *message.ProviderMessageID)
		require.NoError(t, err)
		assert.Equal(t, models.MessageStatusQueued, stored.Status)

		flow := newDeliveryTestFlow(testDB, "delivery")
		resp, err := flow.ProcessDeliveryReport(ctx, &dto.DeliveryReportRequest{
			MessageID: *message.ProviderMessageID,
			Status:    "delivered",
		}, metadata)
		require.NoError(t, err)
		assert.Equal(t, models.MessageStatusDelivered, resp.Result)

		userRepo := repository.NewUserRepository(testDB.DB)
		updated, err := userRepo.ByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, uint64(95), updated.SMSBalance)
	})

	t.Run("UnknownMessage", func(t *testing.T) {
		flow := newDeliveryTestFlow(testDB, "send")

		_, err := flow.ProcessDeliveryReport(ctx, &dto.DeliveryReportRequest{
			MessageID: "no-such-provider-id",
			Status:    "delivered",
		}, metadata)
		require.Error(t, err)
		assert.True(t, IsMessageNotFound(err))
	})

	t.Run("MissingIdentifier", func(t *testing.T) {
		flow := newDeliveryTestFlow(testDB, "send")

		_, err := flow.ProcessDeliveryReport(ctx, &dto.DeliveryReportRequest{Status: "delivered"}, metadata)
		require.Error(t, err)
	})

	t.Run("UnknownStatus", func(t *testing.T) {
		user, err := fixtures.CreateTestUser(100)
		require.NoError(t, err)
		message, err := fixtures.CreateTestMessage(user.ID, models.MessageStatusQueued, 5)
		require.NoError(t, err)

		flow := newDeliveryTestFlow(testDB, "send")

		_, err = flow.ProcessDeliveryReport(ctx, &dto.DeliveryReportRequest{
			MessageID: *message.ProviderMessageID,
			Status:    "sideways",
		}, metadata)
		require.Error(t, err)

		stored, lookupErr := messageRepo.ByProviderMessageID(ctx, *message.ProviderMessageID)
		require.NoError(t, lookupErr)
		assert.Equal(t, models.MessageStatusQueued, stored.Status)
	})
}
