// Package businessflow contains the business logic for the application.
package businessflow

import (
	"context"
	"time"

	"github.com/nkwabiz/nkwabiz/app/dto"
	"github.com/nkwabiz/nkwabiz/models"
	"github.com/nkwabiz/nkwabiz/repository"
	"github.com/nkwabiz/nkwabiz/utils"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds client-related information for logging and auditing
type ClientMetadata struct {
	IPAddress  string            `json:"ip_address"`
	UserAgent  string            `json:"user_agent"`
	RequestID  string            `json:"request_id,omitempty"`
	Additional map[string]string `json:"additional,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Additional: make(map[string]string),
	}
}

// AddAdditional adds additional custom information to the metadata
func (cm *ClientMetadata) AddAdditional(key, value string) {
	if cm.Additional == nil {
		cm.Additional = make(map[string]string)
	}
	cm.Additional[key] = value
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// ToUserInfo converts a user model to the auth response DTO
func ToUserInfo(user models.User, isPremium bool) dto.UserInfo {
	return dto.UserInfo{
		ID:           user.ID,
		UUID:         user.UUID.String(),
		BusinessName: user.BusinessName,
		Email:        user.Email,
		Phone:        user.Phone,
		SenderID:     user.SenderID,
		SMSBalance:   user.SMSBalance,
		IsPremium:    isPremium,
		CreatedAt:    user.CreatedAt.Format(time.RFC3339),
	}
}

// ToMessageDTO converts a message model to its listing DTO
func ToMessageDTO(m models.Message) dto.MessageDTO {
	out := dto.MessageDTO{
		UUID:              m.UUID.String(),
		Recipient:         m.Recipient,
		Content:           m.Content,
		SenderID:          m.SenderID,
		Parts:             m.Parts,
		Cost:              m.Cost,
		Status:            m.Status,
		FailureReason:     m.FailureReason,
		ProviderMessageID: m.ProviderMessageID,
		CreatedAt:         m.CreatedAt.Format(time.RFC3339),
	}
	if m.DeliveredAt != nil {
		s := m.DeliveredAt.Format(time.RFC3339)
		out.DeliveredAt = &s
	}
	return out
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

// hasPremium reports whether the user holds an unexpired successful
// bundle payment. Premium status is derived, never stored.
func hasPremium(ctx context.Context, paymentRepo repository.PaymentRepository, userID uint) bool {
	grant, err := paymentRepo.LatestPremiumGrant(ctx, userID, utils.UTCNow())
	return err == nil && grant != nil
}
