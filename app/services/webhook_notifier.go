package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/nkwabiz/nkwabiz/config"
	"github.com/nkwabiz/nkwabiz/utils"
)

// DeliveryEvent is the payload pushed to a developer's webhook when one
// of their messages reaches a terminal state.
type DeliveryEvent struct {
	MessageID         string  `json:"message_id"`
	ProviderMessageID string  `json:"provider_message_id,omitempty"`
	Recipient         string  `json:"recipient"`
	Status            string  `json:"status"`
	Reason            *string `json:"reason,omitempty"`
	OccurredAt        string  `json:"occurred_at"`
	AttemptedAt       string  `json:"attempted_at"`
}

// WebhookNotifier forwards delivery events to developer-registered endpoints
type WebhookNotifier interface {
	NotifyDelivery(ctx context.Context, url, secret string, event DeliveryEvent) error
}

// WebhookNotifierImpl implements WebhookNotifier
type WebhookNotifierImpl struct {
	config *config.DeveloperConfig
	client *http.Client
}

// NewWebhookNotifier creates a new webhook notifier
func NewWebhookNotifier(cfg *config.DeveloperConfig) WebhookNotifier {
	return &WebhookNotifierImpl{
		config: cfg,
		client: &http.Client{
			Timeout: cfg.WebhookTimeout,
		},
	}
}

// NotifyDelivery posts the event to url, signing the body with
// HMAC-SHA256 in the X-Nkwabiz-Signature header. Retries with linear
// backoff up to the configured limit.
func (n *WebhookNotifierImpl) NotifyDelivery(ctx context.Context, url, secret string, event DeliveryEvent) error {
	if event.AttemptedAt == "" {
		event.AttemptedAt = utils.UTCNow().Format(time.RFC3339)
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal delivery event: %w", err)
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	signature := hex.EncodeToString(mac.Sum(nil))

	attempts := n.config.WebhookMaxRetries + 1
	var lastErr error
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
			return fmt.Errorf("failed to create webhook request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Nkwabiz-Signature", signature)

		resp, err := n.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		lastErr = fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return fmt.Errorf("webhook delivery failed after %d attempts: %w", attempts, lastErr)
}

// MockWebhookNotifier implements WebhookNotifier for testing
type MockWebhookNotifier struct {
	mu     sync.Mutex
	Events []DeliveryEvent
	URLs   []string
}

func (m *MockWebhookNotifier) NotifyDelivery(_ context.Context, url, _ string, event DeliveryEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
	m.URLs = append(m.URLs, url)
	return nil
}
