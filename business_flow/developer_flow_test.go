package businessflow

import (
	"strings"
	"testing"

	"github.com/nkwabiz/nkwabiz/app/dto"
	"github.com/nkwabiz/nkwabiz/models"
	"github.com/nkwabiz/nkwabiz/repository"
	testingutil "github.com/nkwabiz/nkwabiz/testing"
	"github.com/nkwabiz/nkwabiz/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAPIKey(t *testing.T) {
	a := HashAPIKey("nkwa_abc")
	b := HashAPIKey("nkwa_abc")
	c := HashAPIKey("nkwa_abd")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestAPIKeyLifecycle(t *testing.T) {
	testDB := testingutil.RequireTestDB(t)
	fixtures := testingutil.NewTestFixtures(testDB)
	ctx := testingutil.CreateTestContext()
	metadata := NewClientMetadata("127.0.0.1", "test")

	flow := NewDeveloperFlow(repository.NewAPIKeyRepository(testDB.DB), repository.NewMessageRepository(testDB.DB), testDB.DB)

	user, err := fixtures.CreateTestUser(100)
	require.NoError(t, err)

	created, err := flow.CreateAPIKey(ctx, user.ID, &dto.CreateAPIKeyRequest{
		Name:       "storefront",
		WebhookURL: utils.ToPtr("https://shop.example.com/hooks/sms"),
	}, metadata)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(created.Key, "nkwa_"))
	assert.True(t, strings.HasPrefix(created.Key, created.KeyPrefix))
	require.NotNil(t, created.WebhookSecret)
	assert.Len(t, *created.WebhookSecret, 64)

	t.Run("AuthenticatePlaintext", func(t *testing.T) {
		key, err := flow.AuthenticateKey(ctx, created.Key)
		require.NoError(t, err)
		assert.Equal(t, user.ID, key.UserID)
		assert.Equal(t, "storefront", key.Name)
	})

	t.Run("ListHidesSecrets", func(t *testing.T) {
		resp, err := flow.ListAPIKeys(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, resp.Keys, 1)
		assert.Equal(t, created.KeyPrefix, resp.Keys[0].KeyPrefix)
		assert.True(t, utils.IsTrue(resp.Keys[0].IsActive))
	})

	t.Run("RevokedKeyStopsAuthenticating", func(t *testing.T) {
		err := flow.RevokeAPIKey(ctx, user.ID, created.UUID, metadata)
		require.NoError(t, err)

		_, err = flow.AuthenticateKey(ctx, created.Key)
		require.Error(t, err)
		assert.True(t, IsAPIKeyNotFound(err))
	})

	t.Run("UnknownKey", func(t *testing.T) {
		_, err := flow.AuthenticateKey(ctx, "nkwa_deadbeef")
		require.Error(t, err)
		assert.True(t, IsAPIKeyNotFound(err))

		_, err = flow.AuthenticateKey(ctx, "")
		require.Error(t, err)
		assert.True(t, IsAPIKeyNotFound(err))
	})

	t.Run("RevokeForeignKeyFails", func(t *testing.T) {
		other, err := fixtures.CreateTestUser(0)
		require.NoError(t, err)

		second, err := flow.CreateAPIKey(ctx, user.ID, &dto.CreateAPIKeyRequest{Name: "ci"}, metadata)
		require.NoError(t, err)

		err = flow.RevokeAPIKey(ctx, other.ID, second.UUID, metadata)
		require.Error(t, err)
		assert.True(t, IsAPIKeyNotFound(err))
	})
}

func TestWebhookManagement(t *testing.T) {
	testDB := testingutil.RequireTestDB(t)
	fixtures := testingutil.NewTestFixtures(testDB)
	ctx := testingutil.CreateTestContext()
	metadata := NewClientMetadata("127.0.0.1", "test")

	apiKeyRepo := repository.NewAPIKeyRepository(testDB.DB)
	flow := NewDeveloperFlow(apiKeyRepo, repository.NewMessageRepository(testDB.DB), testDB.DB)

	user, err := fixtures.CreateTestUser(0)
	require.NoError(t, err)

	created, err := flow.CreateAPIKey(ctx, user.ID, &dto.CreateAPIKeyRequest{Name: "storefront"}, metadata)
	require.NoError(t, err)

	t.Run("ConfigureStoresURLAndSecret", func(t *testing.T) {
		resp, err := flow.ConfigureWebhook(ctx, user.ID, created.UUID, &dto.ConfigureWebhookRequest{
			WebhookURL: "https://shop.example.com/hooks/sms",
		}, metadata)
		require.NoError(t, err)
		assert.Equal(t, "https://shop.example.com/hooks/sms", resp.WebhookURL)
		assert.Len(t, resp.WebhookSecret, 64)

		key, err := flow.AuthenticateKey(ctx, created.Key)
		require.NoError(t, err)
		require.NotNil(t, key.WebhookURL)
		assert.Equal(t, "https://shop.example.com/hooks/sms", *key.WebhookURL)
		require.NotNil(t, key.WebhookSecret)
		assert.Equal(t, resp.WebhookSecret, *key.WebhookSecret)
	})

	t.Run("ReconfigureRotatesSecret", func(t *testing.T) {
		first, err := flow.ConfigureWebhook(ctx, user.ID, created.UUID, &dto.ConfigureWebhookRequest{
			WebhookURL: "https://shop.example.com/hooks/v1",
		}, metadata)
		require.NoError(t, err)

		second, err := flow.ConfigureWebhook(ctx, user.ID, created.UUID, &dto.ConfigureWebhookRequest{
			WebhookURL: "https://shop.example.com/hooks/v2",
		}, metadata)
		require.NoError(t, err)
		assert.NotEqual(t, first.WebhookSecret, second.WebhookSecret)
	})

	t.Run("DisableClearsBoth", func(t *testing.T) {
		err := flow.DisableWebhook(ctx, user.ID, created.UUID, metadata)
		require.NoError(t, err)

		key, err := flow.AuthenticateKey(ctx, created.Key)
		require.NoError(t, err)
		assert.Nil(t, key.WebhookURL)
		assert.Nil(t, key.WebhookSecret)
	})

	t.Run("ForeignKeyHidden", func(t *testing.T) {
		other, err := fixtures.CreateTestUser(0)
		require.NoError(t, err)

		_, err = flow.ConfigureWebhook(ctx, other.ID, created.UUID, &dto.ConfigureWebhookRequest{
			WebhookURL: "https://evil.example.com/hooks",
		}, metadata)
		require.Error(t, err)
		assert.True(t, IsAPIKeyNotFound(err))
	})
}

func TestUsageStats(t *testing.T) {
	testDB := testingutil.RequireTestDB(t)
	fixtures := testingutil.NewTestFixtures(testDB)
	ctx := testingutil.CreateTestContext()
	metadata := NewClientMetadata("127.0.0.1", "test")

	flow := NewDeveloperFlow(repository.NewAPIKeyRepository(testDB.DB), repository.NewMessageRepository(testDB.DB), testDB.DB)

	user, err := fixtures.CreateTestUser(0)
	require.NoError(t, err)

	created, err := flow.CreateAPIKey(ctx, user.ID, &dto.CreateAPIKeyRequest{Name: "storefront"}, metadata)
	require.NoError(t, err)
	key, err := flow.AuthenticateKey(ctx, created.Key)
	require.NoError(t, err)

	delivered, err := fixtures.CreateTestMessage(user.ID, models.MessageStatusDelivered, 5)
	require.NoError(t, err)
	queued, err := fixtures.CreateTestMessage(user.ID, models.MessageStatusQueued, 5)
	require.NoError(t, err)
	failed, err := fixtures.CreateTestMessage(user.ID, models.MessageStatusFailed, 5)
	require.NoError(t, err)
	require.NoError(t, testDB.DB.Model(&models.Message{}).
		Where("id IN ?", []uint{delivered.ID, queued.ID, failed.ID}).
		Update("api_key_id", key.ID).Error)

	// A message sent without this key stays out of the stats
	_, err = fixtures.CreateTestMessage(user.ID, models.MessageStatusDelivered, 5)
	require.NoError(t, err)

	stats, err := flow.UsageStats(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "storefront", stats.Name)
	assert.Equal(t, created.KeyPrefix, stats.KeyPrefix)
	assert.Equal(t, int64(1), stats.Messages[models.MessageStatusDelivered])
	assert.Equal(t, int64(1), stats.Messages[models.MessageStatusQueued])
	assert.Equal(t, int64(1), stats.Messages[models.MessageStatusFailed])
}
