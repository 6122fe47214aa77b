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
	"time"

	"github.com/nkwabiz/nkwabiz/config"
)

// ErrEmailDeliveryFailed is returned once all retry attempts are exhausted.
var ErrEmailDeliveryFailed = errors.New("email delivery failed")

// EmailService sends transactional email
type EmailService interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
	SendPasswordReset(ctx context.Context, to, resetURL string) error
}

// EmailServiceImpl implements EmailService against a Resend-compatible HTTP API
type EmailServiceImpl struct {
	config *config.EmailConfig
	client *http.Client
}

// NewEmailService creates a new email service
func NewEmailService(cfg *config.EmailConfig) EmailService {
	return &EmailServiceImpl{
		config: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type emailSendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// Send delivers one email, retrying transient failures
func (s *EmailServiceImpl) Send(ctx context.Context, to, subject, htmlBody string) error {
	payload := emailSendRequest{
		From:    fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromEmail),
		To:      []string{to},
		Subject: subject,
		HTML:    htmlBody,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal email request: %w", err)
	}

	url := strings.TrimRight(s.config.BaseURL, "/") + "/emails"

	var lastErr error
	attempts := s.config.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("failed to create email request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

		resp, err := s.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		lastErr = fmt.Errorf("status %d", resp.StatusCode)

		// Client errors will not improve on retry
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			break
		}
	}

	return fmt.Errorf("%w: %v", ErrEmailDeliveryFailed, lastErr)
}

// SendPasswordReset sends the password reset email with the tokenized link
func (s *EmailServiceImpl) SendPasswordReset(ctx context.Context, to, resetURL string) error {
	subject := "Reset your password"
	html := fmt.Sprintf(`<p>Someone requested a password reset for your account.</p>
<p><a href="%s">Reset your password</a></p>
<p>If you did not request this, you can ignore this email. The link expires in one hour.</p>`, resetURL)
	return s.Send(ctx, to, subject, html)
}

// MockEmailService implements EmailService for testing
type MockEmailService struct {
	mu         sync.Mutex
	SentEmails []MockSentEmail
	FailWith   error
}

// MockSentEmail records one Send call to the mock
type MockSentEmail struct {
	To      string
	Subject string
	HTML    string
}

func (m *MockEmailService) Send(_ context.Context, to, subject, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	m.SentEmails = append(m.SentEmails, MockSentEmail{To: to, Subject: subject, HTML: htmlBody})
	return nil
}

func (m *MockEmailService) SendPasswordReset(ctx context.Context, to, resetURL string) error {
	return m.Send(ctx, to, "Reset your password", resetURL)
}
