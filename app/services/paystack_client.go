package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/nkwabiz/nkwabiz/config"
)

// Paystack error constants
var (
	ErrPaystackUnreachable = errors.New("paystack unreachable")
	ErrPaystackDeclined    = errors.New("paystack declined request")
)

// PaystackInitResult is the checkout handle returned by transaction initialization
type PaystackInitResult struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// PaystackVerifyResult is the settled state of a transaction
type PaystackVerifyResult struct {
	Status    string `json:"status"`
	Reference string `json:"reference"`
	Amount    uint64 `json:"amount"`
	Currency  string `json:"currency"`
	PaidAt    string `json:"paid_at"`
}

// PaystackClient talks to the Paystack REST API
type PaystackClient interface {
	InitializeTransaction(ctx context.Context, email string, amount uint64, reference string) (*PaystackInitResult, error)
	VerifyTransaction(ctx context.Context, reference string) (*PaystackVerifyResult, error)
	VerifyWebhookSignature(payload []byte, signature string) bool
}

// PaystackClientImpl implements PaystackClient
type PaystackClientImpl struct {
	config *config.PaystackConfig
	client *http.Client
}

// NewPaystackClient creates a new Paystack client
func NewPaystackClient(cfg *config.PaystackConfig) PaystackClient {
	return &PaystackClientImpl{
		config: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type paystackEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (p *PaystackClientImpl) do(ctx context.Context, method, path string, body any, out any) error {
	var reqBody *bytes.Buffer
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal paystack request: %w", err)
		}
		reqBody = bytes.NewBuffer(encoded)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	url := strings.TrimRight(p.config.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create paystack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.config.SecretKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPaystackUnreachable, err)
	}
	defer resp.Body.Close()

	var envelope paystackEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("%w: undecodable response", ErrPaystackUnreachable)
	}

	if resp.StatusCode != http.StatusOK || !envelope.Status {
		message := envelope.Message
		if message == "" {
			message = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return fmt.Errorf("%w: %s", ErrPaystackDeclined, message)
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("failed to decode paystack data: %w", err)
		}
	}
	return nil
}

// InitializeTransaction starts a checkout session for amount pesewas
func (p *PaystackClientImpl) InitializeTransaction(ctx context.Context, email string, amount uint64, reference string) (*PaystackInitResult, error) {
	payload := map[string]any{
		"email":     email,
		"amount":    amount,
		"reference": reference,
		"currency":  "GHS",
	}
	if p.config.CallbackURL != "" {
		payload["callback_url"] = p.config.CallbackURL
	}

	var result PaystackInitResult
	if err := p.do(ctx, http.MethodPost, "/transaction/initialize", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// VerifyTransaction fetches the settled state of a transaction
func (p *PaystackClientImpl) VerifyTransaction(ctx context.Context, reference string) (*PaystackVerifyResult, error) {
	var result PaystackVerifyResult
	if err := p.do(ctx, http.MethodGet, "/transaction/verify/"+reference, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// VerifyWebhookSignature checks the x-paystack-signature header, an
// HMAC-SHA512 of the raw body keyed with the secret key.
func (p *PaystackClientImpl) VerifyWebhookSignature(payload []byte, signature string) bool {
	mac := hmac.New(sha512.New, []byte(p.config.SecretKey))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// MockPaystackClient implements PaystackClient for testing
type MockPaystackClient struct {
	InitResult   *PaystackInitResult
	VerifyResult *PaystackVerifyResult
	FailWith     error
	SignatureOK  bool
}

func (m *MockPaystackClient) InitializeTransaction(_ context.Context, _ string, _ uint64, reference string) (*PaystackInitResult, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	if m.InitResult != nil {
		return m.InitResult, nil
	}
	return &PaystackInitResult{
		AuthorizationURL: "https://checkout.paystack.com/" + reference,
		AccessCode:       "mock-access",
		Reference:        reference,
	}, nil
}

func (m *MockPaystackClient) VerifyTransaction(_ context.Context, reference string) (*PaystackVerifyResult, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	if m.VerifyResult != nil {
		return m.VerifyResult, nil
	}
	return &PaystackVerifyResult{Status: "success", Reference: reference, Currency: "GHS"}, nil
}

func (m *MockPaystackClient) VerifyWebhookSignature(_ []byte, _ string) bool {
	return m.SignatureOK
}
