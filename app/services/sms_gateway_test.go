package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nkwabiz/nkwabiz/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGateway(baseURL string) SMSGateway {
	return NewSMSGateway(&config.SMSConfig{
		ProviderBaseURL: baseURL,
		APIKey:          "test-api-key",
		CallbackURL:     "https://api.example.com/delivery",
		Timeout:         2 * time.Second,
	})
}

func TestSMSGatewaySend(t *testing.T) {
	var captured gatewaySendRequest
	var capturedAPIKey string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/sms/send", r.URL.Path)
		capturedAPIKey = r.Header.Get("api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		_ = json.NewEncoder(w).Encode(gatewaySendResponse{
			Status: "success",
			Data: []gatewaySendEntry{
				{Recipient: "233241234567", ID: "msg-1"},
				{Recipient: "233541234567", ID: "msg-2"},
			},
		})
	}))
	defer server.Close()

	gateway := newTestGateway(server.URL)
	result, err := gateway.Send(context.Background(), "MyShop", "Hello", []string{"233241234567", "233541234567"})
	require.NoError(t, err)

	assert.Equal(t, "test-api-key", capturedAPIKey)
	assert.Equal(t, "MyShop", captured.Sender)
	assert.Equal(t, "https://api.example.com/delivery", captured.CallbackURL)

	require.Len(t, result.Accepted, 2)
	assert.Empty(t, result.Rejected)
	assert.Equal(t, "msg-1", result.Accepted[0].MessageID)
}

func TestSMSGatewaySendPartialRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(gatewaySendResponse{
			Status: "success",
			Data: []gatewaySendEntry{
				{Recipient: "233241234567", ID: "msg-1"},
				{Recipient: "233999999999", Status: "invalid"},
			},
		})
	}))
	defer server.Close()

	gateway := newTestGateway(server.URL)
	result, err := gateway.Send(context.Background(), "MyShop", "Hello", []string{"233241234567", "233999999999"})
	require.NoError(t, err)

	require.Len(t, result.Accepted, 1)
	require.Len(t, result.Rejected, 1)
	assert.Equal(t, "233999999999", result.Rejected[0].Recipient)
}

func TestSMSGatewaySendRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(gatewaySendResponse{Status: "error", Message: "insufficient gateway credit"})
	}))
	defer server.Close()

	gateway := newTestGateway(server.URL)
	_, err := gateway.Send(context.Background(), "MyShop", "Hello", []string{"233241234567"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGatewayRejected)
}

func TestSMSGatewaySendServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	gateway := newTestGateway(server.URL)
	_, err := gateway.Send(context.Background(), "MyShop", "Hello", []string{"233241234567"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGatewayUnreachable)
}

func TestSMSGatewaySendUnreachable(t *testing.T) {
	gateway := newTestGateway("http://127.0.0.1:1")
	_, err := gateway.Send(context.Background(), "MyShop", "Hello", []string{"233241234567"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGatewayUnreachable)
}

func TestSMSGatewaySendNoRecipients(t *testing.T) {
	gateway := newTestGateway("http://127.0.0.1:1")
	result, err := gateway.Send(context.Background(), "MyShop", "Hello", nil)
	require.NoError(t, err)
	assert.Empty(t, result.Accepted)
	assert.Empty(t, result.Rejected)
}
