package businessflow

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nkwabiz/nkwabiz/app/dto"
	"github.com/nkwabiz/nkwabiz/app/services"
	"github.com/nkwabiz/nkwabiz/config"
	"github.com/nkwabiz/nkwabiz/models"
	"github.com/nkwabiz/nkwabiz/repository"
	"github.com/nkwabiz/nkwabiz/utils"
	"gorm.io/gorm"
)

// PaymentFlow handles SMS bundle purchases through Paystack
type PaymentFlow interface {
	ListBundles(ctx context.Context) *dto.BundleListResponse
	InitiatePayment(ctx context.Context, userID uint, req *dto.InitiatePaymentRequest, metadata *ClientMetadata) (*dto.InitiatePaymentResponse, error)
	ProcessWebhook(ctx context.Context, event *dto.PaymentWebhookEvent, metadata *ClientMetadata) error
	VerifyPayment(ctx context.Context, userID uint, reference string, metadata *ClientMetadata) (*dto.PaymentDTO, error)
	PaymentHistory(ctx context.Context, userID uint, page, pageSize int) (*dto.PaymentListResponse, error)
}

// PaymentFlowImpl implements the payment business flow
type PaymentFlowImpl struct {
	userRepo    repository.UserRepository
	paymentRepo repository.PaymentRepository
	paystack    services.PaystackClient
	smsConfig   *config.SMSConfig
	db          *gorm.DB
}

// NewPaymentFlow creates a new payment flow instance
func NewPaymentFlow(
	userRepo repository.UserRepository,
	paymentRepo repository.PaymentRepository,
	paystack services.PaystackClient,
	smsConfig *config.SMSConfig,
	db *gorm.DB,
) PaymentFlow {
	return &PaymentFlowImpl{
		userRepo:    userRepo,
		paymentRepo: paymentRepo,
		paystack:    paystack,
		smsConfig:   smsConfig,
		db:          db,
	}
}

// ListBundles returns the purchasable bundles in ascending price order
func (p *PaymentFlowImpl) ListBundles(ctx context.Context) *dto.BundleListResponse {
	bundles := make([]dto.BundleDTO, 0, len(models.SMSBundles))
	for code, bundle := range models.SMSBundles {
		bundles = append(bundles, dto.BundleDTO{
			Code:         code,
			Name:         bundle.Name,
			Credits:      bundle.Credits,
			Amount:       bundle.Amount,
			ValidityDays: bundle.ValidityDays,
		})
	}
	sort.Slice(bundles, func(i, j int) bool { return bundles[i].Amount < bundles[j].Amount })
	return &dto.BundleListResponse{Bundles: bundles}
}

// InitiatePayment creates the pending payment row and a Paystack
// checkout session
func (p *PaymentFlowImpl) InitiatePayment(ctx context.Context, userID uint, req *dto.InitiatePaymentRequest, metadata *ClientMetadata) (*dto.InitiatePaymentResponse, error) {
	bundle, ok := models.SMSBundles[req.BundleCode]
	if !ok {
		return nil, NewBusinessError("BUNDLE_NOT_FOUND", "Unknown bundle code", ErrBundleNotFound)
	}

	user, err := p.userRepo.ByID(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("USER_LOOKUP_FAILED", "Failed to load user", err)
	}
	if user == nil {
		return nil, NewBusinessError("USER_NOT_FOUND", "User not found", ErrUserNotFound)
	}

	reference := uuid.New().String()
	now := utils.UTCNow()
	payment := &models.Payment{
		UUID:       uuid.New(),
		UserID:     userID,
		Reference:  reference,
		BundleCode: req.BundleCode,
		Amount:     bundle.Amount,
		Credits:    bundle.Credits,
		Status:     models.PaymentStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := p.paymentRepo.Save(ctx, payment); err != nil {
		return nil, NewBusinessError("PAYMENT_CREATE_FAILED", "Failed to create payment", err)
	}

	initResult, err := p.paystack.InitializeTransaction(ctx, user.Email, bundle.Amount, reference)
	if err != nil {
		return nil, NewBusinessError("PAYMENT_PROVIDER_UNAVAILABLE", "Payment provider unavailable", ErrPaymentProviderUnavailable)
	}

	return &dto.InitiatePaymentResponse{
		Reference:        reference,
		AuthorizationURL: initResult.AuthorizationURL,
		Amount:           bundle.Amount,
	}, nil
}

// ProcessWebhook settles a payment from a charge.success event. The
// handler has already checked the HMAC signature; this re-verifies the
// transaction with Paystack before crediting, and the pending-status
// guard makes replays a no-op.
func (p *PaymentFlowImpl) ProcessWebhook(ctx context.Context, event *dto.PaymentWebhookEvent, metadata *ClientMetadata) error {
	if event.Event != "charge.success" {
		return nil
	}
	return p.settle(ctx, event.Data.Reference)
}

// VerifyPayment lets the client poll for settlement after checkout
func (p *PaymentFlowImpl) VerifyPayment(ctx context.Context, userID uint, reference string, metadata *ClientMetadata) (*dto.PaymentDTO, error) {
	payment, err := p.paymentRepo.ByReference(ctx, reference)
	if err != nil {
		return nil, NewBusinessError("PAYMENT_LOOKUP_FAILED", "Failed to load payment", err)
	}
	if payment == nil || payment.UserID != userID {
		return nil, NewBusinessError("PAYMENT_NOT_FOUND", "Payment not found", ErrPaymentNotFound)
	}

	if payment.Status == models.PaymentStatusPending {
		if err := p.settle(ctx, reference); err != nil && !IsPaymentAlreadyProcessed(err) {
			return nil, err
		}
		payment, err = p.paymentRepo.ByReference(ctx, reference)
		if err != nil || payment == nil {
			return nil, NewBusinessError("PAYMENT_LOOKUP_FAILED", "Failed to reload payment", err)
		}
	}

	result := toPaymentDTO(*payment)
	return &result, nil
}

// settle verifies the transaction with Paystack and, when it succeeded
// with the right amount, credits the wallet and closes the payment row
// in one transaction.
func (p *PaymentFlowImpl) settle(ctx context.Context, reference string) error {
	payment, err := p.paymentRepo.ByReference(ctx, reference)
	if err != nil {
		return NewBusinessError("PAYMENT_LOOKUP_FAILED", "Failed to load payment", err)
	}
	if payment == nil {
		return NewBusinessError("PAYMENT_NOT_FOUND", "Payment not found", ErrPaymentNotFound)
	}
	if payment.Status != models.PaymentStatusPending {
		return NewBusinessError("PAYMENT_ALREADY_PROCESSED", "Payment already processed", ErrPaymentAlreadyProcessed)
	}

	verifyResult, err := p.paystack.VerifyTransaction(ctx, reference)
	if err != nil {
		return NewBusinessError("PAYMENT_PROVIDER_UNAVAILABLE", "Payment provider unavailable", ErrPaymentProviderUnavailable)
	}

	now := utils.UTCNow()
	if !strings.EqualFold(verifyResult.Status, "success") || verifyResult.Amount != payment.Amount {
		if _, err := p.paymentRepo.MarkFailed(ctx, payment.ID); err != nil {
			return NewBusinessError("PAYMENT_UPDATE_FAILED", "Failed to update payment", err)
		}
		return nil
	}

	bundle, ok := models.SMSBundles[payment.BundleCode]
	if !ok {
		return NewBusinessError("BUNDLE_NOT_FOUND", "Unknown bundle code", ErrBundleNotFound)
	}

	paidAt := now
	if t, err := time.Parse(time.RFC3339, verifyResult.PaidAt); err == nil {
		paidAt = t.UTC()
	}
	expiry := now.AddDate(0, 0, bundle.ValidityDays)

	// The status guard in MarkSettled decides the race between the
	// webhook and a concurrent verify poll; only the winner credits.
	return repository.WithTransaction(ctx, p.db, func(txCtx context.Context) error {
		claimed, err := p.paymentRepo.MarkSettled(txCtx, payment.ID, paidAt, expiry)
		if err != nil {
			return err
		}
		if !claimed {
			return NewBusinessError("PAYMENT_ALREADY_PROCESSED", "Payment already processed", ErrPaymentAlreadyProcessed)
		}
		credit := payment.Credits * p.smsConfig.UnitCost
		_, err = p.userRepo.CreditSMSBalance(txCtx, payment.UserID, credit)
		return err
	})
}

// PaymentHistory lists the caller's payments, newest first
func (p *PaymentFlowImpl) PaymentHistory(ctx context.Context, userID uint, page, pageSize int) (*dto.PaymentListResponse, error) {
	if page < 1 {
		return nil, NewBusinessError("INVALID_FILTER", "Invalid page", ErrInvalidPage)
	}
	if pageSize < 1 || pageSize > 100 {
		return nil, NewBusinessError("INVALID_FILTER", "Invalid page size", ErrInvalidPageSize)
	}

	filter := models.PaymentFilter{UserID: &userID}

	total, err := p.paymentRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("PAYMENT_LIST_FAILED", "Failed to count payments", err)
	}

	payments, err := p.paymentRepo.ByFilter(ctx, filter, "created_at DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("PAYMENT_LIST_FAILED", "Failed to list payments", err)
	}

	out := make([]dto.PaymentDTO, 0, len(payments))
	for _, payment := range payments {
		out = append(out, toPaymentDTO(*payment))
	}

	return &dto.PaymentListResponse{
		Payments: out,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func toPaymentDTO(p models.Payment) dto.PaymentDTO {
	return dto.PaymentDTO{
		UUID:       p.UUID.String(),
		Reference:  p.Reference,
		BundleCode: p.BundleCode,
		Amount:     p.Amount,
		Credits:    p.Credits,
		Status:     p.Status,
		ExpiryDate: formatTimePtr(p.ExpiryDate),
		PaidAt:     formatTimePtr(p.PaidAt),
		CreatedAt:  p.CreatedAt.Format(time.RFC3339),
	}
}
