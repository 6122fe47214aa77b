package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nkwabiz/nkwabiz/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyDeliverySignsPayload(t *testing.T) {
	var body []byte
	var signature string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		signature = r.Header.Get("X-Nkwabiz-Signature")
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(&config.DeveloperConfig{
		WebhookTimeout:    2 * time.Second,
		WebhookMaxRetries: 0,
	})

	reason := "absent subscriber"
	event := DeliveryEvent{
		MessageID:         "3e7c0c2e-0000-0000-0000-000000000001",
		ProviderMessageID: "msg-1",
		Recipient:         "233241234567",
		Status:            "failed",
		Reason:            &reason,
		OccurredAt:        "2026-08-30T14:05:00Z",
	}
	require.NoError(t, notifier.NotifyDelivery(context.Background(), server.URL, "whsec_test", event))

	var decoded DeliveryEvent
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, event.MessageID, decoded.MessageID)
	assert.Equal(t, event.Status, decoded.Status)

	mac := hmac.New(sha256.New, []byte("whsec_test"))
	mac.Write(body)
	assert.Equal(t, hex.EncodeToString(mac.Sum(nil)), signature)
}

func TestNotifyDeliveryRetriesOnFailure(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(&config.DeveloperConfig{
		WebhookTimeout:    2 * time.Second,
		WebhookMaxRetries: 2,
	})

	err := notifier.NotifyDelivery(context.Background(), server.URL, "whsec_test", DeliveryEvent{MessageID: "m"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}
