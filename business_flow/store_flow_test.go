package businessflow

import (
	"testing"

	"github.com/nkwabiz/nkwabiz/app/dto"
	"github.com/nkwabiz/nkwabiz/repository"
	testingutil "github.com/nkwabiz/nkwabiz/testing"
	"github.com/nkwabiz/nkwabiz/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhatsAppLink(t *testing.T) {
	assert.Equal(t, "https://wa.me/233241234567", WhatsAppLink("233241234567"))
	assert.Equal(t, "https://wa.me/233241234567", WhatsAppLink("+233241234567"))
}

func TestUpsertStore(t *testing.T) {
	testDB := testingutil.RequireTestDB(t)
	fixtures := testingutil.NewTestFixtures(testDB)
	ctx := testingutil.CreateTestContext()
	metadata := NewClientMetadata("127.0.0.1", "test")

	flow := NewStoreFlow(
		repository.NewStoreRepository(testDB.DB),
		repository.NewProductRepository(testDB.DB),
		testDB.DB,
	)

	user, err := fixtures.CreateTestUser(0)
	require.NoError(t, err)

	created, err := flow.UpsertStore(ctx, user.ID, &dto.UpsertStoreRequest{
		Name:     "Ama's Shop",
		WhatsApp: "233241234567",
	}, metadata)
	require.NoError(t, err)
	assert.Equal(t, "ama-s-shop", created.Slug)
	assert.Equal(t, "https://wa.me/233241234567", created.WhatsAppLink)
	assert.True(t, utils.IsTrue(created.IsPublished))

	t.Run("RenameKeepsSlug", func(t *testing.T) {
		updated, err := flow.UpsertStore(ctx, user.ID, &dto.UpsertStoreRequest{
			Name:     "Ama's Emporium",
			WhatsApp: "233241234567",
		}, metadata)
		require.NoError(t, err)
		assert.Equal(t, "Ama's Emporium", updated.Name)
		assert.Equal(t, created.Slug, updated.Slug)
		assert.Equal(t, created.UUID, updated.UUID)
	})

	t.Run("SlugCollisionGetsCounter", func(t *testing.T) {
		other, err := fixtures.CreateTestUser(0)
		require.NoError(t, err)

		second, err := flow.UpsertStore(ctx, other.ID, &dto.UpsertStoreRequest{
			Name:     "Ama's Shop",
			WhatsApp: "233209876543",
		}, metadata)
		require.NoError(t, err)
		assert.Equal(t, "ama-s-shop-2", second.Slug)
	})

	t.Run("MyStore", func(t *testing.T) {
		mine, err := flow.MyStore(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, created.Slug, mine.Slug)

		stranger, err := fixtures.CreateTestUser(0)
		require.NoError(t, err)
		_, err = flow.MyStore(ctx, stranger.ID)
		require.Error(t, err)
		assert.True(t, IsStoreNotFound(err))
	})
}

func TestPublicStore(t *testing.T) {
	testDB := testingutil.RequireTestDB(t)
	fixtures := testingutil.NewTestFixtures(testDB)
	ctx := testingutil.CreateTestContext()
	metadata := NewClientMetadata("127.0.0.1", "test")

	storeFlow := NewStoreFlow(
		repository.NewStoreRepository(testDB.DB),
		repository.NewProductRepository(testDB.DB),
		testDB.DB,
	)
	productFlow := newProductTestFlow(testDB)

	user, err := fixtures.CreateTestUser(0)
	require.NoError(t, err)

	created, err := storeFlow.UpsertStore(ctx, user.ID, &dto.UpsertStoreRequest{
		Name:     "Kofi Electronics",
		WhatsApp: "233501112222",
	}, metadata)
	require.NoError(t, err)

	_, err = productFlow.CreateProduct(ctx, user.ID, &dto.CreateProductRequest{
		Name:     "Phone Charger",
		Price:    3000,
		Quantity: 12,
	}, metadata)
	require.NoError(t, err)

	_, err = productFlow.CreateProduct(ctx, user.ID, &dto.CreateProductRequest{
		Name:     "Backroom Stock",
		Price:    1000,
		Quantity: 4,
		IsListed: utils.ToPtr(false),
	}, metadata)
	require.NoError(t, err)

	t.Run("ListsOnlyPublicProducts", func(t *testing.T) {
		page, err := storeFlow.PublicStore(ctx, created.Slug)
		require.NoError(t, err)
		assert.Equal(t, "Kofi Electronics", page.Store.Name)
		require.Len(t, page.Products, 1)
		assert.Equal(t, "Phone Charger", page.Products[0].Name)
	})

	t.Run("UnpublishedStoreHidden", func(t *testing.T) {
		_, err := storeFlow.UpsertStore(ctx, user.ID, &dto.UpsertStoreRequest{
			Name:        "Kofi Electronics",
			WhatsApp:    "233501112222",
			IsPublished: utils.ToPtr(false),
		}, metadata)
		require.NoError(t, err)

		_, err = storeFlow.PublicStore(ctx, created.Slug)
		require.Error(t, err)
		assert.True(t, IsStoreNotFound(err))
	})

	t.Run("UnknownSlug", func(t *testing.T) {
		_, err := storeFlow.PublicStore(ctx, "no-such-store")
		require.Error(t, err)
		assert.True(t, IsStoreNotFound(err))
	})
}
