package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nkwabiz/nkwabiz/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPaystackClient(baseURL string) PaystackClient {
	return NewPaystackClient(&config.PaystackConfig{
		BaseURL:   baseURL,
		SecretKey: "sk_test_secret",
		Timeout:   2 * time.Second,
	})
}

func TestInitializeTransaction(t *testing.T) {
	var captured map[string]any
	var capturedAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		capturedAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		_, _ = w.Write([]byte(`{"status":true,"message":"Authorization URL created","data":{"authorization_url":"https://checkout.paystack.com/abc123","access_code":"abc123","reference":"ref_1"}}`))
	}))
	defer server.Close()

	client := newTestPaystackClient(server.URL)
	result, err := client.InitializeTransaction(context.Background(), "ama@example.com", 2000, "ref_1")
	require.NoError(t, err)

	assert.Equal(t, "Bearer sk_test_secret", capturedAuth)
	assert.Equal(t, "ama@example.com", captured["email"])
	assert.Equal(t, float64(2000), captured["amount"])
	assert.Equal(t, "GHS", captured["currency"])
	assert.Equal(t, "https://checkout.paystack.com/abc123", result.AuthorizationURL)
	assert.Equal(t, "ref_1", result.Reference)
}

func TestVerifyTransaction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/verify/ref_1", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":true,"data":{"status":"success","reference":"ref_1","amount":2000,"currency":"GHS","paid_at":"2026-08-30T14:05:00Z"}}`))
	}))
	defer server.Close()

	client := newTestPaystackClient(server.URL)
	result, err := client.VerifyTransaction(context.Background(), "ref_1")
	require.NoError(t, err)

	assert.Equal(t, "success", result.Status)
	assert.Equal(t, uint64(2000), result.Amount)
	assert.Equal(t, "GHS", result.Currency)
}

func TestVerifyTransactionDeclined(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status":false,"message":"Transaction reference not found"}`))
	}))
	defer server.Close()

	client := newTestPaystackClient(server.URL)
	_, err := client.VerifyTransaction(context.Background(), "ref_missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPaystackDeclined)
}

func TestVerifyWebhookSignature(t *testing.T) {
	client := newTestPaystackClient("http://example.com")
	payload := []byte(`{"event":"charge.success","data":{"reference":"ref_1"}}`)

	mac := hmac.New(sha512.New, []byte("sk_test_secret"))
	mac.Write(payload)
	valid := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, client.VerifyWebhookSignature(payload, valid))
	assert.False(t, client.VerifyWebhookSignature(payload, "deadbeef"))
	assert.False(t, client.VerifyWebhookSignature([]byte("tampered"), valid))
}
