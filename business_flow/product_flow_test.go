package businessflow

import (
	"testing"

	"github.com/google/uuid"
	"github.com/nkwabiz/nkwabiz/app/dto"
	"github.com/nkwabiz/nkwabiz/repository"
	testingutil "github.com/nkwabiz/nkwabiz/testing"
	"github.com/nkwabiz/nkwabiz/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProductTestFlow(testDB *testingutil.TestDB) ProductFlow {
	return NewProductFlow(
		repository.NewProductRepository(testDB.DB),
		repository.NewSalesHistoryRepository(testDB.DB),
		repository.NewPaymentRepository(testDB.DB),
		testDB.DB,
	)
}

func TestProductLifecycle(t *testing.T) {
	testDB := testingutil.RequireTestDB(t)
	fixtures := testingutil.NewTestFixtures(testDB)
	ctx := testingutil.CreateTestContext()
	metadata := NewClientMetadata("127.0.0.1", "test")

	flow := newProductTestFlow(testDB)

	user, err := fixtures.CreateTestUser(0)
	require.NoError(t, err)

	created, err := flow.CreateProduct(ctx, user.ID, &dto.CreateProductRequest{
		Name:     "Shea Butter 500g",
		Price:    1500,
		Quantity: 20,
	}, metadata)
	require.NoError(t, err)
	assert.NotEmpty(t, created.UUID)
	assert.Equal(t, 5, created.LowStockAlert)
	assert.True(t, utils.IsTrue(created.IsListed))

	t.Run("Update", func(t *testing.T) {
		updated, err := flow.UpdateProduct(ctx, user.ID, created.UUID, &dto.UpdateProductRequest{
			Price:    utils.ToPtr(uint64(1800)),
			Category: utils.ToPtr("Cosmetics"),
		}, metadata)
		require.NoError(t, err)
		assert.Equal(t, uint64(1800), updated.Price)
		require.NotNil(t, updated.Category)
		assert.Equal(t, "Cosmetics", *updated.Category)
		assert.Equal(t, "Shea Butter 500g", updated.Name)
	})

	t.Run("List", func(t *testing.T) {
		resp, err := flow.ListProducts(ctx, user.ID, "", false, 1, 20)
		require.NoError(t, err)
		assert.Equal(t, int64(1), resp.Total)

		resp, err = flow.ListProducts(ctx, user.ID, "shea", false, 1, 20)
		require.NoError(t, err)
		require.Len(t, resp.Products, 1)

		resp, err = flow.ListProducts(ctx, user.ID, "nonexistent", false, 1, 20)
		require.NoError(t, err)
		assert.Empty(t, resp.Products)
	})

	t.Run("UnknownProduct", func(t *testing.T) {
		_, err := flow.UpdateProduct(ctx, user.ID, uuid.New().String(), &dto.UpdateProductRequest{}, metadata)
		require.Error(t, err)
		assert.True(t, IsProductNotFound(err))
	})

	t.Run("OtherUsersProductHidden", func(t *testing.T) {
		other, err := fixtures.CreateTestUser(0)
		require.NoError(t, err)
		_, err = flow.UpdateProduct(ctx, other.ID, created.UUID, &dto.UpdateProductRequest{}, metadata)
		require.Error(t, err)
		assert.True(t, IsProductNotFound(err))
	})
}

func TestRecordSale(t *testing.T) {
	testDB := testingutil.RequireTestDB(t)
	fixtures := testingutil.NewTestFixtures(testDB)
	ctx := testingutil.CreateTestContext()
	metadata := NewClientMetadata("127.0.0.1", "test")

	flow := newProductTestFlow(testDB)
	productRepo := repository.NewProductRepository(testDB.DB)

	user, err := fixtures.CreateTestUser(0)
	require.NoError(t, err)
	product, err := fixtures.CreateTestProduct(user.ID, "Kente Scarf", 2500, 10)
	require.NoError(t, err)

	t.Run("DeductsStock", func(t *testing.T) {
		sale, err := flow.RecordSale(ctx, user.ID, &dto.RecordSaleRequest{
			ProductUUID: product.UUID.String(),
			Quantity:    3,
		}, metadata)
		require.NoError(t, err)
		assert.Equal(t, uint64(2500), sale.UnitPrice)
		assert.Equal(t, uint64(7500), sale.Total)

		stored, err := productRepo.ByUUID(ctx, product.UUID.String())
		require.NoError(t, err)
		assert.Equal(t, 7, stored.Quantity)
	})

	t.Run("CustomUnitPrice", func(t *testing.T) {
		sale, err := flow.RecordSale(ctx, user.ID, &dto.RecordSaleRequest{
			ProductUUID: product.UUID.String(),
			Quantity:    1,
			UnitPrice:   utils.ToPtr(uint64(2000)),
		}, metadata)
		require.NoError(t, err)
		assert.Equal(t, uint64(2000), sale.Total)
	})

	t.Run("Oversell", func(t *testing.T) {
		_, err := flow.RecordSale(ctx, user.ID, &dto.RecordSaleRequest{
			ProductUUID: product.UUID.String(),
			Quantity:    100,
		}, metadata)
		require.Error(t, err)
		assert.True(t, IsInsufficientStock(err))

		// Stock untouched after the rejected sale
		stored, err := productRepo.ByUUID(ctx, product.UUID.String())
		require.NoError(t, err)
		assert.Equal(t, 6, stored.Quantity)
	})

	t.Run("History", func(t *testing.T) {
		resp, err := flow.SalesHistory(ctx, user.ID, 1, 20)
		require.NoError(t, err)
		assert.Equal(t, int64(2), resp.Total)
	})

	t.Run("ProfitTracked", func(t *testing.T) {
		seller, err := fixtures.CreateTestUser(0)
		require.NoError(t, err)
		created, err := flow.CreateProduct(ctx, seller.ID, &dto.CreateProductRequest{
			Name:      "Shea Butter 500g",
			Price:     2500,
			CostPrice: 1500,
			Quantity:  10,
		}, metadata)
		require.NoError(t, err)

		sale, err := flow.RecordSale(ctx, seller.ID, &dto.RecordSaleRequest{
			ProductUUID: created.UUID,
			Quantity:    3,
		}, metadata)
		require.NoError(t, err)
		assert.Equal(t, int64(3000), sale.Profit)

		// Selling below cost records a negative margin
		sale, err = flow.RecordSale(ctx, seller.ID, &dto.RecordSaleRequest{
			ProductUUID: created.UUID,
			Quantity:    2,
			UnitPrice:   utils.ToPtr(uint64(1000)),
		}, metadata)
		require.NoError(t, err)
		assert.Equal(t, int64(-1000), sale.Profit)
	})
}

func TestPremiumGating(t *testing.T) {
	testDB := testingutil.RequireTestDB(t)
	fixtures := testingutil.NewTestFixtures(testDB)
	ctx := testingutil.CreateTestContext()
	metadata := NewClientMetadata("127.0.0.1", "test")

	flow := newProductTestFlow(testDB)

	user, err := fixtures.CreateTestUser(0)
	require.NoError(t, err)
	product, err := fixtures.CreateTestProduct(user.ID, "Gari 1kg", 800, 2)
	require.NoError(t, err)

	t.Run("FreeTierRejected", func(t *testing.T) {
		err := flow.ArchiveProduct(ctx, user.ID, product.UUID.String(), metadata)
		require.Error(t, err)
		assert.True(t, IsPremiumRequired(err))

		_, err = flow.ListLowStock(ctx, user.ID)
		require.Error(t, err)
		assert.True(t, IsPremiumRequired(err))
	})

	t.Run("PremiumAllowed", func(t *testing.T) {
		_, err := fixtures.CreateTestPayment(user.ID, "small")
		require.NoError(t, err)

		low, err := flow.ListLowStock(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, low, 1)
		assert.Equal(t, "Gari 1kg", low[0].Name)

		err = flow.ArchiveProduct(ctx, user.ID, product.UUID.String(), metadata)
		require.NoError(t, err)

		resp, err := flow.ListProducts(ctx, user.ID, "", false, 1, 20)
		require.NoError(t, err)
		assert.Empty(t, resp.Products)
	})
}

func TestSalesSummary(t *testing.T) {
	testDB := testingutil.RequireTestDB(t)
	fixtures := testingutil.NewTestFixtures(testDB)
	ctx := testingutil.CreateTestContext()
	metadata := NewClientMetadata("127.0.0.1", "test")

	flow := newProductTestFlow(testDB)

	user, err := fixtures.CreateTestUser(0)
	require.NoError(t, err)

	t.Run("FreeTierRejected", func(t *testing.T) {
		_, err := flow.SalesSummary(ctx, user.ID)
		require.Error(t, err)
		assert.True(t, IsPremiumRequired(err))
	})

	_, err = fixtures.CreateTestPayment(user.ID, "small")
	require.NoError(t, err)

	t.Run("NoSalesYet", func(t *testing.T) {
		resp, err := flow.SalesSummary(ctx, user.ID)
		require.NoError(t, err)
		assert.Empty(t, resp.Date)
		assert.Zero(t, resp.Count)
	})

	t.Run("AggregatesLatestDay", func(t *testing.T) {
		created, err := flow.CreateProduct(ctx, user.ID, &dto.CreateProductRequest{
			Name:      "Cocoa Powder",
			Price:     1200,
			CostPrice: 700,
			Quantity:  20,
		}, metadata)
		require.NoError(t, err)

		_, err = flow.RecordSale(ctx, user.ID, &dto.RecordSaleRequest{
			ProductUUID: created.UUID,
			Quantity:    2,
		}, metadata)
		require.NoError(t, err)
		_, err = flow.RecordSale(ctx, user.ID, &dto.RecordSaleRequest{
			ProductUUID: created.UUID,
			Quantity:    1,
		}, metadata)
		require.NoError(t, err)

		resp, err := flow.SalesSummary(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, utils.UTCNow().Format("2006-01-02"), resp.Date)
		assert.Equal(t, int64(2), resp.Count)
		assert.Equal(t, uint64(3600), resp.Revenue)
		assert.Equal(t, int64(1500), resp.Profit)
	})
}
