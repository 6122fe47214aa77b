package businessflow

import (
	"context"
	"strings"
	"time"

	"github.com/nkwabiz/nkwabiz/app/dto"
	"github.com/nkwabiz/nkwabiz/app/services"
	"github.com/nkwabiz/nkwabiz/config"
	"github.com/nkwabiz/nkwabiz/models"
	"github.com/nkwabiz/nkwabiz/repository"
	"gorm.io/gorm"
)

// DeliveryReportFlow reconciles provider delivery callbacks with stored
// messages
type DeliveryReportFlow interface {
	ProcessDeliveryReport(ctx context.Context, req *dto.DeliveryReportRequest, metadata *ClientMetadata) (*dto.DeliveryReportResponse, error)
}

// DeliveryReportFlowImpl implements the delivery report business flow
type DeliveryReportFlowImpl struct {
	userRepo    repository.UserRepository
	messageRepo repository.MessageRepository
	apiKeyRepo  repository.APIKeyRepository
	notifier    services.WebhookNotifier
	smsConfig   *config.SMSConfig
	db          *gorm.DB
}

// NewDeliveryReportFlow creates a new delivery report flow instance
func NewDeliveryReportFlow(
	userRepo repository.UserRepository,
	messageRepo repository.MessageRepository,
	apiKeyRepo repository.APIKeyRepository,
	notifier services.WebhookNotifier,
	smsConfig *config.SMSConfig,
	db *gorm.DB,
) DeliveryReportFlow {
	return &DeliveryReportFlowImpl{
		userRepo:    userRepo,
		messageRepo: messageRepo,
		apiKeyRepo:  apiKeyRepo,
		notifier:    notifier,
		smsConfig:   smsConfig,
		db:          db,
	}
}

// mapProviderStatus folds the provider's status vocabulary onto the
// message lifecycle. Unknown values are rejected rather than guessed at.
func mapProviderStatus(raw string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "delivered", "delivrd":
		return models.MessageStatusDelivered, true
	case "failed", "undelivered", "undeliverable", "rejected", "rejectd":
		return models.MessageStatusFailed, true
	case "expired":
		return models.MessageStatusExpired, true
	}
	return "", false
}

// ProcessDeliveryReport applies one provider callback. The status
// transition is a single guarded update, so replays and reports for
// already-terminal messages acknowledge without changing anything.
func (d *DeliveryReportFlowImpl) ProcessDeliveryReport(ctx context.Context, req *dto.DeliveryReportRequest, metadata *ClientMetadata) (*dto.DeliveryReportResponse, error) {
	providerID := req.ResolveMessageID()
	if providerID == "" {
		return nil, NewBusinessError("REPORT_VALIDATION_FAILED", "Message identifier is required", ErrReportMessageIDRequired)
	}

	rawStatus := req.ResolveStatus()
	if rawStatus == "" {
		return nil, NewBusinessError("REPORT_VALIDATION_FAILED", "Status is required", ErrReportStatusRequired)
	}

	status, ok := mapProviderStatus(rawStatus)
	if !ok {
		return nil, NewBusinessErrorf("REPORT_STATUS_UNKNOWN", "Unknown delivery status %q", ErrReportStatusUnknown, rawStatus)
	}

	var reason *string
	if status == models.MessageStatusFailed || status == models.MessageStatusExpired {
		r := req.Reason
		if r == "" {
			r = rawStatus
		}
		reason = &r
	}

	var deliveredAt *time.Time
	if status == models.MessageStatusDelivered {
		t := parseReportTime(req.DeliveredAt)
		deliveredAt = &t
	}

	// The transition and any delivery-time debit commit together; when
	// the debit fails the transition rolls back and the provider's
	// retry re-applies both.
	var applied bool
	var message *models.Message
	err := repository.WithTransaction(ctx, d.db, func(txCtx context.Context) error {
		var err error
		applied, err = d.messageRepo.ApplyDeliveryReport(txCtx, providerID, status, reason, deliveredAt)
		if err != nil {
			return err
		}
		message, err = d.messageRepo.ByProviderMessageID(txCtx, providerID)
		if err != nil {
			return err
		}
		if applied && message != nil &&
			d.smsConfig.BillingPolicy == "delivery" &&
			status == models.MessageStatusDelivered && message.Cost > 0 {
			if _, err := d.userRepo.DebitSMSBalanceClamped(txCtx, message.UserID, message.Cost); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, NewBusinessError("REPORT_APPLY_FAILED", "Failed to apply delivery report", err)
	}

	if !applied {
		if message == nil {
			return nil, NewBusinessError("MESSAGE_NOT_FOUND", "No message matches the report", ErrMessageNotFound)
		}
		// Terminal already; acknowledge so the provider stops retrying
		return &dto.DeliveryReportResponse{
			Acknowledged: true,
			Result:       "already_processed",
		}, nil
	}

	if message != nil {
		d.notifyAPIKey(ctx, message, status, reason)
	}

	return &dto.DeliveryReportResponse{
		Acknowledged: true,
		Result:       status,
	}, nil
}

// notifyAPIKey forwards the report to the developer webhook tied to the
// message's API key, when one is configured. Delivery of the webhook is
// best effort and never fails the report.
func (d *DeliveryReportFlowImpl) notifyAPIKey(ctx context.Context, message *models.Message, status string, reason *string) {
	if message.APIKeyID == nil || d.notifier == nil {
		return
	}
	key, err := d.apiKeyRepo.ByID(ctx, *message.APIKeyID)
	if err != nil || key == nil || key.WebhookURL == nil || *key.WebhookURL == "" {
		return
	}
	secret := ""
	if key.WebhookSecret != nil {
		secret = *key.WebhookSecret
	}

	event := services.DeliveryEvent{
		MessageID:  message.UUID.String(),
		Recipient:  message.Recipient,
		Status:     status,
		Reason:     reason,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
	if message.ProviderMessageID != nil {
		event.ProviderMessageID = *message.ProviderMessageID
	}
	//nolint:errcheck
	_ = d.notifier.NotifyDelivery(ctx, *key.WebhookURL, secret, event)
}

// parseReportTime accepts the timestamp formats providers actually send
// and falls back to the current time when none parse.
func parseReportTime(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw != "" {
		for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05"} {
			if t, err := time.Parse(layout, raw); err == nil {
				return t.UTC()
			}
		}
	}
	return time.Now().UTC()
}
