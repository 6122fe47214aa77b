package businessflow

import (
	"context"
	"time"

	"github.com/nkwabiz/nkwabiz/app/dto"
	"github.com/nkwabiz/nkwabiz/models"
	"github.com/nkwabiz/nkwabiz/repository"
	"github.com/nkwabiz/nkwabiz/utils"
)

// DashboardFlow aggregates the business overview
type DashboardFlow interface {
	Overview(ctx context.Context, userID uint) (*dto.DashboardResponse, error)
}

// DashboardFlowImpl implements the dashboard business flow
type DashboardFlowImpl struct {
	userRepo    repository.UserRepository
	messageRepo repository.MessageRepository
	productRepo repository.ProductRepository
	salesRepo   repository.SalesHistoryRepository
	expenseRepo repository.ExpenseRepository
	paymentRepo repository.PaymentRepository
}

// NewDashboardFlow creates a new dashboard flow instance
func NewDashboardFlow(
	userRepo repository.UserRepository,
	messageRepo repository.MessageRepository,
	productRepo repository.ProductRepository,
	salesRepo repository.SalesHistoryRepository,
	expenseRepo repository.ExpenseRepository,
	paymentRepo repository.PaymentRepository,
) DashboardFlow {
	return &DashboardFlowImpl{
		userRepo:    userRepo,
		messageRepo: messageRepo,
		productRepo: productRepo,
		salesRepo:   salesRepo,
		expenseRepo: expenseRepo,
		paymentRepo: paymentRepo,
	}
}

// Overview collects the figures for the landing screen in one call
func (d *DashboardFlowImpl) Overview(ctx context.Context, userID uint) (*dto.DashboardResponse, error) {
	user, err := d.userRepo.ByID(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("USER_LOOKUP_FAILED", "Failed to load user", err)
	}
	if user == nil {
		return nil, NewBusinessError("USER_NOT_FOUND", "User not found", ErrUserNotFound)
	}

	now := utils.UTCNow()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	startOfWeek := startOfDay.AddDate(0, 0, -int(now.Weekday()))
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	counts, err := d.messageRepo.CountByStatus(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("DASHBOARD_FAILED", "Failed to count messages", err)
	}

	revenueToday, err := d.salesRepo.RevenueBetween(ctx, userID, startOfDay, now)
	if err != nil {
		return nil, NewBusinessError("DASHBOARD_FAILED", "Failed to total today's revenue", err)
	}
	revenueWeek, err := d.salesRepo.RevenueBetween(ctx, userID, startOfWeek, now)
	if err != nil {
		return nil, NewBusinessError("DASHBOARD_FAILED", "Failed to total the week's revenue", err)
	}

	expenseFilter := models.ExpenseFilter{UserID: &userID, IncurredAfter: &startOfMonth}
	expenses, err := d.expenseRepo.ByFilter(ctx, expenseFilter, "incurred_at DESC", 0, 0)
	if err != nil {
		return nil, NewBusinessError("DASHBOARD_FAILED", "Failed to list month expenses", err)
	}
	var expensesMonth uint64
	for _, expense := range expenses {
		expensesMonth += expense.Amount
	}

	productFilter := models.ProductFilter{UserID: &userID, IsArchived: utils.ToPtr(false)}
	productCount, err := d.productRepo.Count(ctx, productFilter)
	if err != nil {
		return nil, NewBusinessError("DASHBOARD_FAILED", "Failed to count products", err)
	}

	lowStock, err := d.productRepo.ListLowStock(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("DASHBOARD_FAILED", "Failed to count low stock", err)
	}

	salesCount, err := d.salesRepo.Count(ctx, models.SalesHistoryFilter{UserID: &userID})
	if err != nil {
		return nil, NewBusinessError("DASHBOARD_FAILED", "Failed to count sales", err)
	}

	response := &dto.DashboardResponse{
		SMSBalance:      user.SMSBalance,
		MessageCounts:   counts,
		RevenueThisWeek: revenueWeek,
		RevenueToday:    revenueToday,
		ExpensesMonth:   expensesMonth,
		ProductCount:    productCount,
		LowStockCount:   int64(len(lowStock)),
		SalesCount:      salesCount,
	}

	grant, err := d.paymentRepo.LatestPremiumGrant(ctx, userID, utils.UTCNow())
	if err == nil && grant != nil {
		response.IsPremium = true
		response.PremiumExpiry = formatTimePtr(grant.ExpiryDate)
	}

	return response, nil
}
