package businessflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/nkwabiz/nkwabiz/app/dto"
	"github.com/nkwabiz/nkwabiz/app/services"
	"github.com/nkwabiz/nkwabiz/config"
	"github.com/nkwabiz/nkwabiz/models"
	"github.com/nkwabiz/nkwabiz/repository"
	"github.com/nkwabiz/nkwabiz/utils"
	"gorm.io/gorm"
)

const maxRecipientsPerSend = 500

// SMSFlow handles sending, cost estimation, and message history
type SMSFlow interface {
	EstimateCost(ctx context.Context, userID uint, req *dto.CostEstimateRequest) (*dto.CostEstimateResponse, error)
	SendSMS(ctx context.Context, userID uint, req *dto.SendSMSRequest, metadata *ClientMetadata) (*dto.SendSMSResponse, error)
	SendSMSWithKey(ctx context.Context, key *models.APIKey, req *dto.SendSMSRequest, metadata *ClientMetadata) (*dto.SendSMSResponse, error)
	MessageHistory(ctx context.Context, userID uint, status string, page, pageSize int) (*dto.MessageHistoryResponse, error)
	Balance(ctx context.Context, userID uint) (*dto.BalanceResponse, error)
}

// SMSFlowImpl implements the SMS business flow
type SMSFlowImpl struct {
	userRepo    repository.UserRepository
	messageRepo repository.MessageRepository
	batchRepo   repository.SMSBatchRepository
	gateway     services.SMSGateway
	smsConfig   *config.SMSConfig
	plan        utils.NumberingPlan
	db          *gorm.DB
}

// NewSMSFlow creates a new SMS flow instance
func NewSMSFlow(
	userRepo repository.UserRepository,
	messageRepo repository.MessageRepository,
	batchRepo repository.SMSBatchRepository,
	gateway services.SMSGateway,
	smsConfig *config.SMSConfig,
	db *gorm.DB,
) SMSFlow {
	return &SMSFlowImpl{
		userRepo:    userRepo,
		messageRepo: messageRepo,
		batchRepo:   batchRepo,
		gateway:     gateway,
		smsConfig:   smsConfig,
		plan: utils.NumberingPlan{
			CountryCode:      smsConfig.CountryCode,
			OperatorPrefixes: smsConfig.OperatorPrefixes,
			SubscriberLength: smsConfig.SubscriberLength,
		},
		db: db,
	}
}

// CalculateParts returns the number of SMS segments the message
// occupies. GSM-7 messages fit 160 characters in one segment and 153
// per segment when concatenated; anything outside the GSM-7 alphabet is
// sent as UCS-2 at 70/67.
func CalculateParts(message string) int {
	runes := []rune(message)
	if len(runes) == 0 {
		return 0
	}

	length := 0
	gsm7 := true
	for _, r := range runes {
		switch {
		case isGSM7Basic(r):
			length++
		case isGSM7Extended(r):
			// Extension table characters cost an escape plus the character
			length += 2
		default:
			gsm7 = false
		}
	}

	if gsm7 {
		if length <= 160 {
			return 1
		}
		return (length + 152) / 153
	}

	ucs2Length := len(runes)
	if ucs2Length <= 70 {
		return 1
	}
	return (ucs2Length + 66) / 67
}

func isGSM7Basic(r rune) bool {
	if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
		return true
	}
	switch r {
	case '@', '£', '$', '¥', 'è', 'é', 'ù', 'ì', 'ò', 'Ç', '\n', 'Ø', 'ø', '\r',
		'Å', 'å', 'Δ', '_', 'Φ', 'Γ', 'Λ', 'Ω', 'Π', 'Ψ', 'Σ', 'Θ', 'Ξ',
		'Æ', 'æ', 'ß', 'É', ' ', '!', '"', '#', '¤', '%', '&', '\'', '(', ')',
		'*', '+', ',', '-', '.', '/', ':', ';', '<', '=', '>', '?', '¡',
		'Ä', 'Ö', 'Ñ', 'Ü', '§', '¿', 'ä', 'ö', 'ñ', 'ü', 'à':
		return true
	}
	return false
}

func isGSM7Extended(r rune) bool {
	switch r {
	case '^', '{', '}', '\\', '[', ']', '~', '|', '€':
		return true
	}
	return false
}

// normalizeRecipients splits raw recipients into normalized MSISDNs and
// rejects, deduplicating valid numbers while preserving order.
func (s *SMSFlowImpl) normalizeRecipients(raw []string) (valid []string, invalid []string) {
	seen := make(map[string]bool, len(raw))
	for _, r := range raw {
		msisdn, err := utils.NormalizeMSISDN(s.plan, r)
		if err != nil {
			invalid = append(invalid, r)
			continue
		}
		if seen[msisdn] {
			continue
		}
		seen[msisdn] = true
		valid = append(valid, msisdn)
	}
	return valid, invalid
}

// EstimateCost computes segmentation and price without sending anything
func (s *SMSFlowImpl) EstimateCost(ctx context.Context, userID uint, req *dto.CostEstimateRequest) (*dto.CostEstimateResponse, error) {
	if req.Message == "" {
		return nil, NewBusinessError("SMS_VALIDATION_FAILED", "Message is empty", ErrMessageEmpty)
	}

	user, err := s.userRepo.ByID(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("USER_LOOKUP_FAILED", "Failed to load user", err)
	}
	if user == nil {
		return nil, NewBusinessError("USER_NOT_FOUND", "User not found", ErrUserNotFound)
	}

	valid, invalid := s.normalizeRecipients(req.Recipients)
	parts := CalculateParts(req.Message)
	totalCost := uint64(parts) * s.smsConfig.UnitCost * uint64(len(valid))

	return &dto.CostEstimateResponse{
		Parts:           parts,
		ValidRecipients: len(valid),
		Invalid:         invalid,
		UnitCost:        s.smsConfig.UnitCost,
		TotalCost:       totalCost,
		Balance:         user.SMSBalance,
		Affordable:      user.SMSBalance >= totalCost,
	}, nil
}

// SendSMS validates, submits to the gateway, and persists the batch. The
// gateway call happens before the transaction so a network failure never
// leaves a debit behind; the debit and the message rows then commit
// together.
func (s *SMSFlowImpl) SendSMS(ctx context.Context, userID uint, req *dto.SendSMSRequest, metadata *ClientMetadata) (*dto.SendSMSResponse, error) {
	return s.send(ctx, userID, nil, req, metadata)
}

// SendSMSWithKey is the developer API variant; messages are tagged with
// the key so delivery webhooks can be routed back to it.
func (s *SMSFlowImpl) SendSMSWithKey(ctx context.Context, key *models.APIKey, req *dto.SendSMSRequest, metadata *ClientMetadata) (*dto.SendSMSResponse, error) {
	return s.send(ctx, key.UserID, &key.ID, req, metadata)
}

func (s *SMSFlowImpl) send(ctx context.Context, userID uint, apiKeyID *uint, req *dto.SendSMSRequest, _ *ClientMetadata) (*dto.SendSMSResponse, error) {
	if req.Message == "" {
		return nil, NewBusinessError("SMS_VALIDATION_FAILED", "Message is empty", ErrMessageEmpty)
	}
	if len(req.Recipients) == 0 {
		return nil, NewBusinessError("SMS_VALIDATION_FAILED", "No recipients provided", ErrNoRecipients)
	}
	if len(req.Recipients) > maxRecipientsPerSend {
		return nil, NewBusinessError("SMS_VALIDATION_FAILED", "Too many recipients", ErrTooManyRecipients)
	}

	user, err := s.userRepo.ByID(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("USER_LOOKUP_FAILED", "Failed to load user", err)
	}
	if user == nil {
		return nil, NewBusinessError("USER_NOT_FOUND", "User not found", ErrUserNotFound)
	}
	if !utils.IsTrue(user.IsActive) {
		return nil, NewBusinessError("ACCOUNT_INACTIVE", "Account is inactive", ErrAccountInactive)
	}

	senderID := req.SenderID
	if senderID == "" {
		senderID = user.SenderID
	}
	if senderID == "" {
		senderID = s.smsConfig.SenderID
	}
	if senderID == "" {
		return nil, NewBusinessError("SMS_VALIDATION_FAILED", "Sender ID is required", ErrSenderIDRequired)
	}

	valid, invalid := s.normalizeRecipients(req.Recipients)
	if len(invalid) > 0 {
		// One bad number rejects the whole batch, before any balance
		// check or gateway call
		return nil, NewBusinessErrorf("SMS_VALIDATION_FAILED",
			"Invalid recipients: %s", ErrInvalidRecipients, strings.Join(invalid, ", "))
	}
	if len(valid) == 0 {
		return nil, NewBusinessError("SMS_VALIDATION_FAILED", "No valid recipients", ErrNoValidRecipients)
	}

	parts := CalculateParts(req.Message)
	perMessageCost := uint64(parts) * s.smsConfig.UnitCost
	worstCaseCost := perMessageCost * uint64(len(valid))

	// Sufficiency is checked before dispatch under both billing
	// policies; only the debit moment differs.
	if user.SMSBalance < worstCaseCost {
		return nil, NewBusinessErrorf("INSUFFICIENT_FUNDS",
			"Balance %d does not cover cost %d", ErrInsufficientFunds, user.SMSBalance, worstCaseCost)
	}

	gwResult, err := s.gateway.Send(ctx, senderID, req.Message, valid)
	if err != nil {
		if errors.Is(err, services.ErrGatewayRejected) {
			return nil, NewBusinessError("GATEWAY_REJECTED", "SMS gateway rejected the request", ErrGatewayRejectedSend)
		}
		return nil, NewBusinessError("GATEWAY_UNAVAILABLE", "SMS gateway unavailable", ErrGatewayUnavailable)
	}

	acceptedCost := perMessageCost * uint64(len(gwResult.Accepted))

	now := utils.UTCNow()
	batch := &models.SMSBatch{
		UUID:       uuid.New(),
		UserID:     userID,
		Content:    req.Message,
		SenderID:   senderID,
		Recipients: pq.StringArray(valid),
		Accepted:   len(gwResult.Accepted),
		Rejected:   len(gwResult.Rejected),
		TotalCost:  acceptedCost,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	var newBalance uint64
	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		if s.smsConfig.BillingPolicy == "send" && acceptedCost > 0 {
			balance, err := s.userRepo.DebitSMSBalance(txCtx, userID, acceptedCost)
			if err != nil {
				if errors.Is(err, repository.ErrInsufficientSMSBalance) {
					return ErrInsufficientFunds
				}
				return err
			}
			newBalance = balance
		} else {
			newBalance = user.SMSBalance
		}

		if err := s.batchRepo.Save(txCtx, batch); err != nil {
			return err
		}

		messages := make([]*models.Message, 0, len(gwResult.Accepted)+len(gwResult.Rejected))
		for _, a := range gwResult.Accepted {
			providerID := a.MessageID
			messages = append(messages, &models.Message{
				UUID:              uuid.New(),
				UserID:            userID,
				BatchID:           &batch.ID,
				APIKeyID:          apiKeyID,
				Recipient:         a.Recipient,
				Content:           req.Message,
				SenderID:          senderID,
				Parts:             parts,
				Cost:              perMessageCost,
				Status:            models.MessageStatusQueued,
				ProviderMessageID: &providerID,
				CreatedAt:         now,
				UpdatedAt:         now,
			})
		}
		for _, r := range gwResult.Rejected {
			reason := r.Reason
			messages = append(messages, &models.Message{
				UUID:          uuid.New(),
				UserID:        userID,
				BatchID:       &batch.ID,
				APIKeyID:      apiKeyID,
				Recipient:     r.Recipient,
				Content:       req.Message,
				SenderID:      senderID,
				Parts:         parts,
				Cost:          0,
				Status:        models.MessageStatusFailed,
				FailureReason: &reason,
				CreatedAt:     now,
				UpdatedAt:     now,
			})
		}
		return s.messageRepo.SaveBatch(txCtx, messages)
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientFunds) {
			return nil, NewBusinessError("INSUFFICIENT_FUNDS", "Insufficient SMS balance", ErrInsufficientFunds)
		}
		return nil, NewBusinessError("SMS_SEND_FAILED", "Failed to record SMS batch", err)
	}

	results := make([]dto.RecipientResult, 0, len(valid))
	for _, a := range gwResult.Accepted {
		results = append(results, dto.RecipientResult{
			Recipient: a.Recipient,
			MessageID: a.MessageID,
			Status:    models.MessageStatusQueued,
		})
	}
	for _, r := range gwResult.Rejected {
		results = append(results, dto.RecipientResult{
			Recipient: r.Recipient,
			Status:    models.MessageStatusFailed,
			Reason:    r.Reason,
		})
	}
	return &dto.SendSMSResponse{
		BatchID:    batch.UUID.String(),
		Message:    fmt.Sprintf("Accepted %d of %d recipients", len(gwResult.Accepted), len(req.Recipients)),
		Accepted:   len(gwResult.Accepted),
		Rejected:   len(gwResult.Rejected),
		Parts:      parts,
		TotalCost:  acceptedCost,
		NewBalance: newBalance,
		Results:    results,
	}, nil
}

// MessageHistory returns a page of the user's messages, newest first
func (s *SMSFlowImpl) MessageHistory(ctx context.Context, userID uint, status string, page, pageSize int) (*dto.MessageHistoryResponse, error) {
	if page < 1 {
		return nil, NewBusinessError("INVALID_FILTER", "Invalid page", ErrInvalidPage)
	}
	if pageSize < 1 || pageSize > 100 {
		return nil, NewBusinessError("INVALID_FILTER", "Invalid page size", ErrInvalidPageSize)
	}

	filter := models.MessageFilter{UserID: &userID}
	if status != "" {
		filter.Status = &status
	}

	total, err := s.messageRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("MESSAGE_HISTORY_FAILED", "Failed to count messages", err)
	}

	messages, err := s.messageRepo.ByFilter(ctx, filter, "created_at DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("MESSAGE_HISTORY_FAILED", "Failed to list messages", err)
	}

	counts, err := s.messageRepo.CountByStatus(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("MESSAGE_HISTORY_FAILED", "Failed to count by status", err)
	}

	out := make([]dto.MessageDTO, 0, len(messages))
	for _, m := range messages {
		out = append(out, ToMessageDTO(*m))
	}

	return &dto.MessageHistoryResponse{
		Messages: out,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Counts:   counts,
	}, nil
}

// Balance returns the wallet state
func (s *SMSFlowImpl) Balance(ctx context.Context, userID uint) (*dto.BalanceResponse, error) {
	user, err := s.userRepo.ByID(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("USER_LOOKUP_FAILED", "Failed to load user", err)
	}
	if user == nil {
		return nil, NewBusinessError("USER_NOT_FOUND", "User not found", ErrUserNotFound)
	}
	return &dto.BalanceResponse{
		Balance:  user.SMSBalance,
		UnitCost: s.smsConfig.UnitCost,
	}, nil
}
