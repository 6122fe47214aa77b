package businessflow

import (
	"strings"
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

func TestCalculateParts(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		expected int
	}{
		{name: "empty", message: "", expected: 0},
		{name: "short gsm7", message: "Hello from the shop", expected: 1},
		{name: "gsm7 exactly one part", message: strings.Repeat("a", 160), expected: 1},
		{name: "gsm7 just over one part", message: strings.Repeat("a", 161), expected: 2},
		{name: "gsm7 two full parts", message: strings.Repeat("a", 306), expected: 2},
		{name: "gsm7 three parts", message: strings.Repeat("a", 307), expected: 3},
		{name: "extended char counts double", message: strings.Repeat("a", 158) + "€", expected: 1},
		{name: "extended char pushes over", message: strings.Repeat("a", 159) + "€", expected: 2},
		{name: "brackets are extended", message: strings.Repeat("[", 80), expected: 1},
		{name: "ucs2 one part", message: strings.Repeat("ɛ", 70), expected: 1},
		{name: "ucs2 over one part", message: strings.Repeat("ɛ", 71), expected: 2},
		{name: "ucs2 two full parts", message: strings.Repeat("ɛ", 134), expected: 2},
		{name: "single unicode char switches encoding", message: strings.Repeat("a", 100) + "ɔ", expected: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CalculateParts(tt.message))
		})
	}
}

func testSMSConfig() *config.SMSConfig {
	return &config.SMSConfig{
		SenderID:         "Nkwabiz",
		UnitCost:         5,
		BillingPolicy:    "send",
		CountryCode:      "233",
		OperatorPrefixes: []string{"20", "23", "24", "25", "26", "27", "28", "50", "53", "54", "55", "56", "57", "59"},
		SubscriberLength: 7,
	}
}

func TestSendSMS(t *testing.T) {
	testDB := testingutil.RequireTestDB(t)
	fixtures := testingutil.NewTestFixtures(testDB)
	ctx := testingutil.CreateTestContext()

	userRepo := repository.NewUserRepository(testDB.DB)
	messageRepo := repository.NewMessageRepository(testDB.DB)
	batchRepo := repository.NewSMSBatchRepository(testDB.DB)

	t.Run("SuccessfulSendDebitsBalance", func(t *testing.T) {
		user, err := fixtures.CreateTestUser(1000)
		require.NoError(t, err)

		gateway := services.NewMockSMSGateway()
		flow := NewSMSFlow(userRepo, messageRepo, batchRepo, gateway, testSMSConfig(), testDB.DB)

		resp, err := flow.SendSMS(ctx, user.ID, &dto.SendSMSRequest{
			Message:    "Your order is ready",
			Recipients: []string{"0241234567", "+233541234567"},
		}, NewClientMetadata("127.0.0.1", "test"))
		require.NoError(t, err)

		assert.Equal(t, 2, resp.Accepted)
		assert.Equal(t, 0, resp.Rejected)
		assert.Equal(t, 1, resp.Parts)
		assert.Equal(t, uint64(10), resp.TotalCost)
		assert.Equal(t, uint64(990), resp.NewBalance)
		assert.NotEmpty(t, resp.BatchID)

		updated, err := userRepo.ByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, uint64(990), updated.SMSBalance)

		messages, err := messageRepo.ByFilter(ctx, models.MessageFilter{UserID: &user.ID}, "", 0, 0)
		require.NoError(t, err)
		require.Len(t, messages, 2)
		for _, m := range messages {
			assert.Equal(t, models.MessageStatusQueued, m.Status)
			require.NotNil(t, m.ProviderMessageID)
			assert.Equal(t, uint64(5), m.Cost)
		}

		require.Len(t, gateway.SentMessages, 1)
		assert.ElementsMatch(t, []string{"233241234567", "233541234567"}, gateway.SentMessages[0].Recipients)
	})

	t.Run("InvalidRecipientRejectsWholeBatch", func(t *testing.T) {
		user, err := fixtures.CreateTestUser(1000)
		require.NoError(t, err)

		gateway := services.NewMockSMSGateway()
		flow := NewSMSFlow(userRepo, messageRepo, batchRepo, gateway, testSMSConfig(), testDB.DB)

		_, err = flow.SendSMS(ctx, user.ID, &dto.SendSMSRequest{
			Message:    "Hello",
			Recipients: []string{"0241234567", "not-a-number"},
		}, NewClientMetadata("127.0.0.1", "test"))
		require.Error(t, err)
		assert.True(t, IsInvalidRecipients(err))
		assert.Empty(t, gateway.SentMessages)

		updated, err := userRepo.ByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, uint64(1000), updated.SMSBalance)

		messages, err := messageRepo.ByFilter(ctx, models.MessageFilter{UserID: &user.ID}, "", 0, 0)
		require.NoError(t, err)
		assert.Empty(t, messages)
	})

	t.Run("DuplicateRecipientsCollapse", func(t *testing.T) {
		user, err := fixtures.CreateTestUser(1000)
		require.NoError(t, err)

		gateway := services.NewMockSMSGateway()
		flow := NewSMSFlow(userRepo, messageRepo, batchRepo, gateway, testSMSConfig(), testDB.DB)

		resp, err := flow.SendSMS(ctx, user.ID, &dto.SendSMSRequest{
			Message:    "Hello",
			Recipients: []string{"0241234567", "+233241234567", "233241234567"},
		}, NewClientMetadata("127.0.0.1", "test"))
		require.NoError(t, err)

		assert.Equal(t, 1, resp.Accepted)
		assert.Equal(t, uint64(5), resp.TotalCost)
	})

	t.Run("AllRecipientsInvalid", func(t *testing.T) {
		user, err := fixtures.CreateTestUser(1000)
		require.NoError(t, err)

		gateway := services.NewMockSMSGateway()
		flow := NewSMSFlow(userRepo, messageRepo, batchRepo, gateway, testSMSConfig(), testDB.DB)

		_, err = flow.SendSMS(ctx, user.ID, &dto.SendSMSRequest{
			Message:    "Hello",
			Recipients: []string{"garbage", "12345"},
		}, NewClientMetadata("127.0.0.1", "test"))
		require.Error(t, err)
		assert.True(t, IsInvalidRecipients(err))
		assert.Empty(t, gateway.SentMessages)
	})

	t.Run("EmptyRecipientList", func(t *testing.T) {
		user, err := fixtures.CreateTestUser(1000)
		require.NoError(t, err)

		gateway := services.NewMockSMSGateway()
		flow := NewSMSFlow(userRepo, messageRepo, batchRepo, gateway, testSMSConfig(), testDB.DB)

		_, err = flow.SendSMS(ctx, user.ID, &dto.SendSMSRequest{
			Message:    "Hello",
			Recipients: []string{},
		}, NewClientMetadata("127.0.0.1", "test"))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNoRecipients)
	})

	t.Run("InsufficientBalance", func(t *testing.T) {
		user, err := fixtures.CreateTestUser(4)
		require.NoError(t, err)

		gateway := services.NewMockSMSGateway()
		flow := NewSMSFlow(userRepo, messageRepo, batchRepo, gateway, testSMSConfig(), testDB.DB)

		_, err = flow.SendSMS(ctx, user.ID, &dto.SendSMSRequest{
			Message:    "Hello",
			Recipients: []string{"0241234567"},
		}, NewClientMetadata("127.0.0.1", "test"))
		require.Error(t, err)
		assert.True(t, IsInsufficientFunds(err))
		assert.Empty(t, gateway.SentMessages)

		updated, err := userRepo.ByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, uint64(4), updated.SMSBalance)
	})

	t.Run("InsufficientBalanceUnderDeliveryBilling", func(t *testing.T) {
		user, err := fixtures.CreateTestUser(4)
		require.NoError(t, err)

		cfg := testSMSConfig()
		cfg.BillingPolicy = "delivery"
		gateway := services.NewMockSMSGateway()
		flow := NewSMSFlow(userRepo, messageRepo, batchRepo, gateway, cfg, testDB.DB)

		_, err = flow.SendSMS(ctx, user.ID, &dto.SendSMSRequest{
			Message:    "Hello",
			Recipients: []string{"0241234567"},
		}, NewClientMetadata("127.0.0.1", "test"))
		require.Error(t, err)
		assert.True(t, IsInsufficientFunds(err))
		assert.Empty(t, gateway.SentMessages)

		updated, err := userRepo.ByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, uint64(4), updated.SMSBalance)
	})

	t.Run("GatewayUnreachableNothingBilled", func(t *testing.T) {
		user, err := fixtures.CreateTestUser(1000)
		require.NoError(t, err)

		gateway := services.NewMockSMSGateway()
		gateway.FailWith = services.ErrGatewayUnreachable
		flow := NewSMSFlow(userRepo, messageRepo, batchRepo, gateway, testSMSConfig(), testDB.DB)

		_, err = flow.SendSMS(ctx, user.ID, &dto.SendSMSRequest{
			Message:    "Hello",
			Recipients: []string{"0241234567"},
		}, NewClientMetadata("127.0.0.1", "test"))
		require.Error(t, err)
		assert.True(t, IsGatewayUnavailable(err))

		updated, err := userRepo.ByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, uint64(1000), updated.SMSBalance)

		messages, err := messageRepo.ByFilter(ctx, models.MessageFilter{UserID: &user.ID}, "", 0, 0)
		require.NoError(t, err)
		assert.Empty(t, messages)
	})

	t.Run("GatewayRejectedNothingBilled", func(t *testing.T) {
		user, err := fixtures.CreateTestUser(1000)
		require.NoError(t, err)

		gateway := services.NewMockSMSGateway()
		gateway.FailWith = services.ErrGatewayRejected
		flow := NewSMSFlow(userRepo, messageRepo, batchRepo, gateway, testSMSConfig(), testDB.DB)

		_, err = flow.SendSMS(ctx, user.ID, &dto.SendSMSRequest{
			Message:    "Hello",
			Recipients: []string{"0241234567"},
		}, NewClientMetadata("127.0.0.1", "test"))
		require.Error(t, err)
		assert.True(t, IsGatewayRejected(err))

		updated, err := userRepo.ByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, uint64(1000), updated.SMSBalance)
	})

	t.Run("InactiveAccountRejected", func(t *testing.T) {
		user, err := fixtures.CreateTestUser(1000)
		require.NoError(t, err)
		require.NoError(t, testDB.DB.Model(user).Update("is_active", false).Error)

		gateway := services.NewMockSMSGateway()
		flow := NewSMSFlow(userRepo, messageRepo, batchRepo, gateway, testSMSConfig(), testDB.DB)

		_, err = flow.SendSMS(ctx, user.ID, &dto.SendSMSRequest{
			Message:    "Hello",
			Recipients: []string{"0241234567"},
		}, NewClientMetadata("127.0.0.1", "test"))
		require.Error(t, err)
		assert.True(t, IsAccountInactive(err))
	})
}

func TestEstimateCost(t *testing.T) {
	testDB := testingutil.RequireTestDB(t)
	fixtures := testingutil.NewTestFixtures(testDB)
	ctx := testingutil.CreateTestContext()

	userRepo := repository.NewUserRepository(testDB.DB)
	messageRepo := repository.NewMessageRepository(testDB.DB)
	batchRepo := repository.NewSMSBatchRepository(testDB.DB)

	user, err := fixtures.CreateTestUser(1000)
	require.NoError(t, err)

	flow := NewSMSFlow(userRepo, messageRepo, batchRepo, services.NewMockSMSGateway(), testSMSConfig(), testDB.DB)

	resp, err := flow.EstimateCost(ctx, user.ID, &dto.CostEstimateRequest{
		Message:    strings.Repeat("a", 200),
		Recipients: []string{"0241234567", "0541234567", "bogus"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Parts)
	assert.Equal(t, 2, resp.ValidRecipients)
	assert.Equal(t, []string{"bogus"}, resp.Invalid)
	assert.Equal(t, uint64(20), resp.TotalCost)
	assert.Equal(t, uint64(1000), resp.Balance)
	assert.True(t, resp.Affordable)
}
