package businessflow

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/nkwabiz/nkwabiz/models"
	"github.com/nkwabiz/nkwabiz/repository"
	"github.com/nkwabiz/nkwabiz/utils"
	"github.com/xuri/excelize/v2"
)

// ExportFlow builds spreadsheet exports of business data
type ExportFlow interface {
	ExportProducts(ctx context.Context, userID uint) (string, []byte, error)
	ExportSales(ctx context.Context, userID uint) (string, []byte, error)
}

// ExportFlowImpl implements the export business flow
type ExportFlowImpl struct {
	productRepo repository.ProductRepository
	salesRepo   repository.SalesHistoryRepository
	paymentRepo repository.PaymentRepository
}

// NewExportFlow creates a new export flow instance
func NewExportFlow(
	productRepo repository.ProductRepository,
	salesRepo repository.SalesHistoryRepository,
	paymentRepo repository.PaymentRepository,
) ExportFlow {
	return &ExportFlowImpl{
		productRepo: productRepo,
		salesRepo:   salesRepo,
		paymentRepo: paymentRepo,
	}
}

// ExportProducts writes the caller's catalog to an xlsx workbook.
// Exports are premium gated.
func (e *ExportFlowImpl) ExportProducts(ctx context.Context, userID uint) (string, []byte, error) {
	if !hasPremium(ctx, e.paymentRepo, userID) {
		return "", nil, NewBusinessError("PREMIUM_REQUIRED", "Exports require an active premium bundle", ErrPremiumRequired)
	}

	products, err := e.productRepo.ByFilter(ctx, models.ProductFilter{UserID: &userID}, "created_at ASC", 0, 0)
	if err != nil {
		return "", nil, NewBusinessError("EXPORT_FAILED", "Failed to list products", err)
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheet := "Products"
	xl.SetSheetName(xl.GetSheetName(0), sheet)

	header := []string{"name", "category", "price", "cost_price", "quantity", "low_stock_alert", "archived", "created_at"}
	_ = xl.SetSheetRow(sheet, "A1", &header)

	for i, product := range products {
		category := ""
		if product.Category != nil {
			category = *product.Category
		}
		record := []string{
			product.Name,
			category,
			formatPesewas(product.Price),
			formatPesewas(product.CostPrice),
			strconv.Itoa(product.Quantity),
			strconv.Itoa(product.LowStockAlert),
			strconv.FormatBool(utils.IsTrue(product.IsArchived)),
			product.CreatedAt.UTC().Format(time.RFC3339),
		}
		cellRef, _ := excelize.CoordinatesToCellName(1, i+2)
		_ = xl.SetSheetRow(sheet, cellRef, &record)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXPORT_FAILED", "Failed to build workbook", err)
	}

	filename := fmt.Sprintf("products_%s.xlsx", utils.UTCNow().Format("20060102"))
	return filename, buf.Bytes(), nil
}

// ExportSales writes the caller's sales history to an xlsx workbook
func (e *ExportFlowImpl) ExportSales(ctx context.Context, userID uint) (string, []byte, error) {
	if !hasPremium(ctx, e.paymentRepo, userID) {
		return "", nil, NewBusinessError("PREMIUM_REQUIRED", "Exports require an active premium bundle", ErrPremiumRequired)
	}

	sales, err := e.salesRepo.ByFilter(ctx, models.SalesHistoryFilter{UserID: &userID}, "sold_at ASC", 0, 0)
	if err != nil {
		return "", nil, NewBusinessError("EXPORT_FAILED", "Failed to list sales", err)
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheet := "Sales"
	xl.SetSheetName(xl.GetSheetName(0), sheet)

	header := []string{"product", "quantity", "unit_price", "total", "customer_name", "customer_phone", "sold_at"}
	_ = xl.SetSheetRow(sheet, "A1", &header)

	for i, sale := range sales {
		productName := ""
		if sale.Product != nil {
			productName = sale.Product.Name
		}
		customerName := ""
		if sale.CustomerName != nil {
			customerName = *sale.CustomerName
		}
		customerPhone := ""
		if sale.CustomerPhone != nil {
			customerPhone = *sale.CustomerPhone
		}
		record := []string{
			productName,
			strconv.Itoa(sale.Quantity),
			formatPesewas(sale.UnitPrice),
			formatPesewas(sale.Total),
			customerName,
			customerPhone,
			sale.SoldAt.UTC().Format(time.RFC3339),
		}
		cellRef, _ := excelize.CoordinatesToCellName(1, i+2)
		_ = xl.SetSheetRow(sheet, cellRef, &record)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXPORT_FAILED", "Failed to build workbook", err)
	}

	filename := fmt.Sprintf("sales_%s.xlsx", utils.UTCNow().Format("20060102"))
	return filename, buf.Bytes(), nil
}

// formatPesewas renders a pesewa amount as cedis with two decimals
func formatPesewas(amount uint64) string {
	return fmt.Sprintf("%d.%02d", amount/100, amount%100)
}
