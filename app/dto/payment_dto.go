package dto

// BundleDTO represents a purchasable SMS bundle
type BundleDTO struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	Credits      uint64 `json:"credits"`
	Amount       uint64 `json:"amount"`
	ValidityDays int    `json:"validity_days"`
}

// BundleListResponse lists the purchasable bundles
type BundleListResponse struct {
	Bundles []BundleDTO `json:"bundles"`
}

// InitiatePaymentRequest represents the payload for starting a bundle purchase
type InitiatePaymentRequest struct {
	BundleCode string `json:"bundle_code" validate:"required,oneof=small medium large xl"`
}

// InitiatePaymentResponse carries the checkout handle
type InitiatePaymentResponse struct {
	Reference        string `json:"reference"`
	AuthorizationURL string `json:"authorization_url"`
	Amount           uint64 `json:"amount"`
}

// PaymentWebhookEvent represents the Paystack webhook envelope
type PaymentWebhookEvent struct {
	Event string             `json:"event"`
	Data  PaymentWebhookData `json:"data"`
}

// PaymentWebhookData is the transaction inside a webhook event
type PaymentWebhookData struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
	Amount    uint64 `json:"amount"`
	PaidAt    string `json:"paid_at"`
}

// PaymentDTO represents a payment in history listings
type PaymentDTO struct {
	UUID       string  `json:"uuid"`
	Reference  string  `json:"reference"`
	BundleCode string  `json:"bundle_code"`
	Amount     uint64  `json:"amount"`
	Credits    uint64  `json:"credits"`
	Status     string  `json:"status"`
	ExpiryDate *string `json:"expiry_date,omitempty"`
	PaidAt     *string `json:"paid_at,omitempty"`
	CreatedAt  string  `json:"created_at"`
}

// PaymentListResponse represents a page of payments
type PaymentListResponse struct {
	Payments []PaymentDTO `json:"payments"`
	Total    int64        `json:"total"`
	Page     int          `json:"page"`
	PageSize int          `json:"page_size"`
}
