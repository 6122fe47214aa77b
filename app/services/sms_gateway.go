package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/nkwabiz/nkwabiz/config"
)

// SMS gateway error constants
var (
	// ErrGatewayUnreachable covers transport failures and timeouts; the
	// caller must not debit anything when it sees this.
	ErrGatewayUnreachable = errors.New("sms gateway unreachable")
	// ErrGatewayRejected means the gateway answered but refused the whole request.
	ErrGatewayRejected = errors.New("sms gateway rejected request")
)

// AcceptedMessage is one recipient the gateway took responsibility for.
type AcceptedMessage struct {
	Recipient string `json:"recipient"`
	MessageID string `json:"message_id"`
}

// RejectedMessage is one recipient the gateway refused.
type RejectedMessage struct {
	Recipient string `json:"recipient"`
	Reason    string `json:"reason"`
}

// SendResult is the per-recipient outcome of one send call. A request
// can be partially accepted; callers bill only the accepted part.
type SendResult struct {
	Accepted []AcceptedMessage
	Rejected []RejectedMessage
}

// SMSGateway submits messages to the upstream SMS provider
type SMSGateway interface {
	Send(ctx context.Context, senderID, message string, recipients []string) (*SendResult, error)
}

// SMSGatewayImpl implements SMSGateway against an Arkesel-compatible HTTP API
type SMSGatewayImpl struct {
	config *config.SMSConfig
	client *http.Client
}

// NewSMSGateway creates a new gateway client
func NewSMSGateway(cfg *config.SMSConfig) SMSGateway {
	return &SMSGatewayImpl{
		config: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type gatewaySendRequest struct {
	Sender      string   `json:"sender"`
	Message     string   `json:"message"`
	Recipients  []string `json:"recipients"`
	CallbackURL string   `json:"callback_url,omitempty"`
}

type gatewaySendEntry struct {
	Recipient string `json:"recipient"`
	ID        string `json:"id"`
	Status    string `json:"status,omitempty"`
}

type gatewaySendResponse struct {
	Status  string             `json:"status"`
	Message string             `json:"message,omitempty"`
	Data    []gatewaySendEntry `json:"data"`
}

// Send submits one message to many recipients in a single API call and
// returns the per-recipient outcome.
func (s *SMSGatewayImpl) Send(ctx context.Context, senderID, message string, recipients []string) (*SendResult, error) {
	if len(recipients) == 0 {
		return &SendResult{}, nil
	}

	payload := gatewaySendRequest{
		Sender:      senderID,
		Message:     message,
		Recipients:  recipients,
		CallbackURL: s.config.CallbackURL,
	}
	requestBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal send request: %w", err)
	}

	url := fmt.Sprintf("%s/api/v2/sms/send", strings.TrimRight(s.config.ProviderBaseURL, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: upstream returned %d", ErrGatewayUnreachable, resp.StatusCode)
	}

	var body gatewaySendResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: undecodable response", ErrGatewayUnreachable)
	}

	if resp.StatusCode != http.StatusOK || body.Status != "success" {
		reason := body.Message
		if reason == "" {
			reason = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: %s", ErrGatewayRejected, reason)
	}

	result := &SendResult{}
	for _, entry := range body.Data {
		if entry.ID == "" || strings.EqualFold(entry.Status, "invalid") {
			reason := entry.Status
			if reason == "" {
				reason = "rejected by provider"
			}
			result.Rejected = append(result.Rejected, RejectedMessage{
				Recipient: entry.Recipient,
				Reason:    reason,
			})
			continue
		}
		result.Accepted = append(result.Accepted, AcceptedMessage{
			Recipient: entry.Recipient,
			MessageID: entry.ID,
		})
	}

	return result, nil
}

// MockSMSGateway implements SMSGateway for testing
type MockSMSGateway struct {
	mu           sync.Mutex
	SentMessages []MockSentMessage
	FailWith     error
	RejectAll    bool
	nextID       int
}

// MockSentMessage records one Send call to the mock
type MockSentMessage struct {
	SenderID   string
	Message    string
	Recipients []string
}

// NewMockSMSGateway creates a mock gateway for testing
func NewMockSMSGateway() *MockSMSGateway {
	return &MockSMSGateway{}
}

// Send records the message and fabricates provider IDs
func (m *MockSMSGateway) Send(_ context.Context, senderID, message string, recipients []string) (*SendResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWith != nil {
		return nil, m.FailWith
	}

	m.SentMessages = append(m.SentMessages, MockSentMessage{
		SenderID:   senderID,
		Message:    message,
		Recipients: recipients,
	})

	result := &SendResult{}
	for _, r := range recipients {
		if m.RejectAll {
			result.Rejected = append(result.Rejected, RejectedMessage{Recipient: r, Reason: "invalid"})
			continue
		}
		m.nextID++
		result.Accepted = append(result.Accepted, AcceptedMessage{
			Recipient: r,
			MessageID: fmt.Sprintf("mock-%d", m.nextID),
		})
	}
	return result, nil
}
