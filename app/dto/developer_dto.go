package dto

// CreateAPIKeyRequest represents the payload for issuing a developer key
type CreateAPIKeyRequest struct {
	Name       string  `json:"name" validate:"required,min=1,max=120"`
	RateLimit  *int    `json:"rate_limit,omitempty" validate:"omitempty,gt=0,lte=600"`
	WebhookURL *string `json:"webhook_url,omitempty" validate:"omitempty,url,max=512"`
}

// CreateAPIKeyResponse carries the one-time plaintext secret
type CreateAPIKeyResponse struct {
	UUID          string  `json:"uuid"`
	Name          string  `json:"name"`
	Key           string  `json:"key"`
	KeyPrefix     string  `json:"key_prefix"`
	WebhookSecret *string `json:"webhook_secret,omitempty"`
	Message       string  `json:"message"`
}

// APIKeyDTO represents a key in listings, without secrets
type APIKeyDTO struct {
	UUID          string  `json:"uuid"`
	Name          string  `json:"name"`
	KeyPrefix     string  `json:"key_prefix"`
	RateLimit     int     `json:"rate_limit"`
	TotalRequests uint64  `json:"total_requests"`
	WebhookURL    *string `json:"webhook_url,omitempty"`
	IsActive      *bool   `json:"is_active"`
	LastUsedAt    *string `json:"last_used_at,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

// APIKeyListResponse lists a user's keys
type APIKeyListResponse struct {
	Keys []APIKeyDTO `json:"keys"`
}

// APIKeyStatsResponse summarizes usage for the authenticated key
type APIKeyStatsResponse struct {
	Name          string           `json:"name"`
	KeyPrefix     string           `json:"key_prefix"`
	RateLimit     int              `json:"rate_limit"`
	TotalRequests uint64           `json:"total_requests"`
	Messages      map[string]int64 `json:"messages"`
}

// ConfigureWebhookRequest sets the delivery webhook for a key
type ConfigureWebhookRequest struct {
	WebhookURL string `json:"webhook_url" validate:"required,url,max=512"`
}

// ConfigureWebhookResponse carries the one-time signing secret
type ConfigureWebhookResponse struct {
	WebhookURL    string `json:"webhook_url"`
	WebhookSecret string `json:"webhook_secret"`
	Message       string `json:"message"`
}
