package businessflow

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/nkwabiz/nkwabiz/app/dto"
	"github.com/nkwabiz/nkwabiz/models"
	"github.com/nkwabiz/nkwabiz/repository"
	"github.com/nkwabiz/nkwabiz/utils"
	"gorm.io/gorm"
)

// ProductFlow handles the product catalog and stock sales
type ProductFlow interface {
	CreateProduct(ctx context.Context, userID uint, req *dto.CreateProductRequest, metadata *ClientMetadata) (*dto.ProductDTO, error)
	UpdateProduct(ctx context.Context, userID uint, productUUID string, req *dto.UpdateProductRequest, metadata *ClientMetadata) (*dto.ProductDTO, error)
	ArchiveProduct(ctx context.Context, userID uint, productUUID string, metadata *ClientMetadata) error
	ListProducts(ctx context.Context, userID uint, name string, includeArchived bool, page, pageSize int) (*dto.ProductListResponse, error)
	ListLowStock(ctx context.Context, userID uint) ([]dto.ProductDTO, error)
	RecordSale(ctx context.Context, userID uint, req *dto.RecordSaleRequest, metadata *ClientMetadata) (*dto.SaleDTO, error)
	SalesHistory(ctx context.Context, userID uint, page, pageSize int) (*dto.SalesListResponse, error)
	SalesSummary(ctx context.Context, userID uint) (*dto.SalesSummaryResponse, error)
}

// ProductFlowImpl implements the product business flow
type ProductFlowImpl struct {
	productRepo repository.ProductRepository
	salesRepo   repository.SalesHistoryRepository
	paymentRepo repository.PaymentRepository
	db          *gorm.DB
}

// NewProductFlow creates a new product flow instance
func NewProductFlow(
	productRepo repository.ProductRepository,
	salesRepo repository.SalesHistoryRepository,
	paymentRepo repository.PaymentRepository,
	db *gorm.DB,
) ProductFlow {
	return &ProductFlowImpl{
		productRepo: productRepo,
		salesRepo:   salesRepo,
		paymentRepo: paymentRepo,
		db:          db,
	}
}

// CreateProduct adds a product to the caller's catalog
func (p *ProductFlowImpl) CreateProduct(ctx context.Context, userID uint, req *dto.CreateProductRequest, metadata *ClientMetadata) (*dto.ProductDTO, error) {
	now := utils.UTCNow()
	lowStockAlert := req.LowStockAlert
	if lowStockAlert == 0 {
		lowStockAlert = 5
	}
	isListed := req.IsListed
	if isListed == nil {
		isListed = utils.ToPtr(true)
	}

	product := &models.Product{
		UUID:          uuid.New(),
		UserID:        userID,
		Name:          req.Name,
		Description:   req.Description,
		Category:      req.Category,
		ImageURL:      req.ImageURL,
		Price:         req.Price,
		CostPrice:     req.CostPrice,
		Quantity:      req.Quantity,
		LowStockAlert: lowStockAlert,
		IsArchived:    utils.ToPtr(false),
		IsListed:      isListed,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := p.productRepo.Save(ctx, product); err != nil {
		return nil, NewBusinessError("PRODUCT_CREATE_FAILED", "Failed to create product", err)
	}

	result := toProductDTO(*product)
	return &result, nil
}

// UpdateProduct applies a partial update to an owned product
func (p *ProductFlowImpl) UpdateProduct(ctx context.Context, userID uint, productUUID string, req *dto.UpdateProductRequest, metadata *ClientMetadata) (*dto.ProductDTO, error) {
	product, err := p.ownedProduct(ctx, userID, productUUID)
	if err != nil {
		return nil, err
	}
	if utils.IsTrue(product.IsArchived) {
		return nil, NewBusinessError("PRODUCT_ARCHIVED", "Product is archived", ErrProductArchived)
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = req.Description
	}
	if req.Category != nil {
		product.Category = req.Category
	}
	if req.ImageURL != nil {
		product.ImageURL = req.ImageURL
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.CostPrice != nil {
		product.CostPrice = *req.CostPrice
	}
	if req.LowStockAlert != nil {
		product.LowStockAlert = *req.LowStockAlert
	}
	if req.IsListed != nil {
		product.IsListed = req.IsListed
	}
	product.UpdatedAt = utils.UTCNow()

	if err := p.productRepo.Update(ctx, product); err != nil {
		return nil, NewBusinessError("PRODUCT_UPDATE_FAILED", "Failed to update product", err)
	}

	result := toProductDTO(*product)
	return &result, nil
}

// ArchiveProduct hides a product from listings; archiving requires an
// active premium grant.
func (p *ProductFlowImpl) ArchiveProduct(ctx context.Context, userID uint, productUUID string, metadata *ClientMetadata) error {
	if !hasPremium(ctx, p.paymentRepo, userID) {
		return NewBusinessError("PREMIUM_REQUIRED", "Archiving requires an active premium bundle", ErrPremiumRequired)
	}

	product, err := p.ownedProduct(ctx, userID, productUUID)
	if err != nil {
		return err
	}

	if err := p.productRepo.Archive(ctx, product.ID); err != nil {
		return NewBusinessError("PRODUCT_ARCHIVE_FAILED", "Failed to archive product", err)
	}
	return nil
}

// ListProducts returns a page of the caller's products, optionally
// filtered by a case-insensitive name match
func (p *ProductFlowImpl) ListProducts(ctx context.Context, userID uint, name string, includeArchived bool, page, pageSize int) (*dto.ProductListResponse, error) {
	if page < 1 {
		return nil, NewBusinessError("INVALID_FILTER", "Invalid page", ErrInvalidPage)
	}
	if pageSize < 1 || pageSize > 100 {
		return nil, NewBusinessError("INVALID_FILTER", "Invalid page size", ErrInvalidPageSize)
	}

	filter := models.ProductFilter{UserID: &userID}
	if name != "" {
		filter.Name = &name
	}
	if !includeArchived {
		filter.IsArchived = utils.ToPtr(false)
	}

	total, err := p.productRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("PRODUCT_LIST_FAILED", "Failed to count products", err)
	}

	products, err := p.productRepo.ByFilter(ctx, filter, "created_at DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("PRODUCT_LIST_FAILED", "Failed to list products", err)
	}

	out := make([]dto.ProductDTO, 0, len(products))
	for _, product := range products {
		out = append(out, toProductDTO(*product))
	}

	return &dto.ProductListResponse{
		Products: out,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// ListLowStock returns products at or below their alert threshold; the
// view is premium gated.
func (p *ProductFlowImpl) ListLowStock(ctx context.Context, userID uint) ([]dto.ProductDTO, error) {
	if !hasPremium(ctx, p.paymentRepo, userID) {
		return nil, NewBusinessError("PREMIUM_REQUIRED", "Low stock alerts require an active premium bundle", ErrPremiumRequired)
	}

	products, err := p.productRepo.ListLowStock(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("PRODUCT_LIST_FAILED", "Failed to list low stock products", err)
	}

	out := make([]dto.ProductDTO, 0, len(products))
	for _, product := range products {
		out = append(out, toProductDTO(*product))
	}
	return out, nil
}

// RecordSale deducts stock and writes the sales history row in one
// transaction. The quantity guard in AdjustQuantity rejects overselling
// even under concurrent sales.
func (p *ProductFlowImpl) RecordSale(ctx context.Context, userID uint, req *dto.RecordSaleRequest, metadata *ClientMetadata) (*dto.SaleDTO, error) {
	if req.Quantity <= 0 {
		return nil, NewBusinessError("SALE_VALIDATION_FAILED", "Quantity must be positive", ErrSaleQuantityInvalid)
	}

	product, err := p.ownedProduct(ctx, userID, req.ProductUUID)
	if err != nil {
		return nil, err
	}
	if utils.IsTrue(product.IsArchived) {
		return nil, NewBusinessError("PRODUCT_ARCHIVED", "Product is archived", ErrProductArchived)
	}

	unitPrice := product.Price
	if req.UnitPrice != nil {
		unitPrice = *req.UnitPrice
	}

	soldAt := utils.UTCNow()
	if req.SoldAt != nil && *req.SoldAt != "" {
		if t, err := time.Parse(time.RFC3339, *req.SoldAt); err == nil {
			soldAt = t.UTC()
		}
	}

	sale := &models.SalesHistory{
		UUID:      uuid.New(),
		UserID:    userID,
		ProductID: product.ID,
		Quantity:  req.Quantity,
		UnitPrice: unitPrice,
		Total:     unitPrice * uint64(req.Quantity),
		Profit:    (int64(unitPrice) - int64(product.CostPrice)) * int64(req.Quantity),
		SoldAt:    soldAt,
		CreatedAt: utils.UTCNow(),
		UpdatedAt: utils.UTCNow(),
	}
	sale.CustomerName = req.CustomerName
	sale.CustomerPhone = req.CustomerPhone

	err = repository.WithTransaction(ctx, p.db, func(txCtx context.Context) error {
		if err := p.productRepo.AdjustQuantity(txCtx, product.ID, -req.Quantity); err != nil {
			return err
		}
		return p.salesRepo.Save(txCtx, sale)
	})
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientStock) {
			return nil, NewBusinessError("INSUFFICIENT_STOCK", "Not enough stock for this sale", ErrInsufficientStock)
		}
		return nil, NewBusinessError("SALE_RECORD_FAILED", "Failed to record sale", err)
	}

	result := toSaleDTO(*sale, product)
	return &result, nil
}

// SalesHistory lists the caller's sales, newest first, with the revenue
// total for the page's full range
func (p *ProductFlowImpl) SalesHistory(ctx context.Context, userID uint, page, pageSize int) (*dto.SalesListResponse, error) {
	if page < 1 {
		return nil, NewBusinessError("INVALID_FILTER", "Invalid page", ErrInvalidPage)
	}
	if pageSize < 1 || pageSize > 100 {
		return nil, NewBusinessError("INVALID_FILTER", "Invalid page size", ErrInvalidPageSize)
	}

	filter := models.SalesHistoryFilter{UserID: &userID}

	total, err := p.salesRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("SALES_LIST_FAILED", "Failed to count sales", err)
	}

	sales, err := p.salesRepo.ByFilter(ctx, filter, "sold_at DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("SALES_LIST_FAILED", "Failed to list sales", err)
	}

	revenue, err := p.salesRepo.RevenueBetween(ctx, userID, time.Time{}, utils.UTCNow())
	if err != nil {
		return nil, NewBusinessError("SALES_LIST_FAILED", "Failed to total revenue", err)
	}

	out := make([]dto.SaleDTO, 0, len(sales))
	for _, sale := range sales {
		out = append(out, toSaleDTO(*sale, sale.Product))
	}

	return &dto.SalesListResponse{
		Sales:    out,
		Total:    total,
		Revenue:  revenue,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// SalesSummary reports the most recent day with sales; the view is
// premium gated like the other analytics.
func (p *ProductFlowImpl) SalesSummary(ctx context.Context, userID uint) (*dto.SalesSummaryResponse, error) {
	if !hasPremium(ctx, p.paymentRepo, userID) {
		return nil, NewBusinessError("PREMIUM_REQUIRED", "Sales summaries require an active premium bundle", ErrPremiumRequired)
	}

	row, err := p.salesRepo.LatestDaySummary(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("SALES_SUMMARY_FAILED", "Failed to summarize sales", err)
	}
	if row == nil {
		return &dto.SalesSummaryResponse{}, nil
	}
	return &dto.SalesSummaryResponse{
		Date:    row.Day.Format("2006-01-02"),
		Count:   row.Count,
		Revenue: row.Revenue,
		Profit:  row.Profit,
	}, nil
}

func (p *ProductFlowImpl) ownedProduct(ctx context.Context, userID uint, productUUID string) (*models.Product, error) {
	product, err := p.productRepo.ByUUID(ctx, productUUID)
	if err != nil {
		return nil, NewBusinessError("PRODUCT_LOOKUP_FAILED", "Failed to load product", err)
	}
	if product == nil || product.UserID != userID {
		return nil, NewBusinessError("PRODUCT_NOT_FOUND", "Product not found", ErrProductNotFound)
	}
	return product, nil
}

func toProductDTO(p models.Product) dto.ProductDTO {
	return dto.ProductDTO{
		UUID:          p.UUID.String(),
		Name:          p.Name,
		Description:   p.Description,
		Category:      p.Category,
		ImageURL:      p.ImageURL,
		Price:         p.Price,
		CostPrice:     p.CostPrice,
		Quantity:      p.Quantity,
		LowStockAlert: p.LowStockAlert,
		LowStock:      p.Quantity <= p.LowStockAlert,
		IsArchived:    p.IsArchived,
		IsListed:      p.IsListed,
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
	}
}

func toSaleDTO(s models.SalesHistory, product *models.Product) dto.SaleDTO {
	out := dto.SaleDTO{
		UUID:          s.UUID.String(),
		Quantity:      s.Quantity,
		UnitPrice:     s.UnitPrice,
		Total:         s.Total,
		Profit:        s.Profit,
		CustomerName:  s.CustomerName,
		CustomerPhone: s.CustomerPhone,
		SoldAt:        s.SoldAt.Format(time.RFC3339),
	}
	if product != nil {
		out.ProductUUID = product.UUID.String()
		out.ProductName = product.Name
	}
	return out
}
