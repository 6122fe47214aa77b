package dto

// SendSMSRequest represents the request payload for sending SMS
type SendSMSRequest struct {
	Message    string   `json:"message" validate:"required,min=1,max=918"`
	Recipients []string `json:"recipients" validate:"required,min=1,max=500,dive,required"`
	SenderID   string   `json:"sender_id,omitempty" validate:"omitempty,max=11"`
}

// RecipientResult is the per-recipient outcome of a send request
type RecipientResult struct {
	Recipient string `json:"recipient"`
	MessageID string `json:"message_id,omitempty"`
	Status    string `json:"status"`
	Reason    string `json:"reason,omitempty"`
}

// SendSMSResponse represents the outcome of a send request
type SendSMSResponse struct {
	BatchID    string            `json:"batch_id"`
	Message    string            `json:"message"`
	Accepted   int               `json:"accepted"`
	Rejected   int               `json:"rejected"`
	Parts      int               `json:"parts"`
	TotalCost  uint64            `json:"total_cost"`
	NewBalance uint64            `json:"new_balance"`
	Results    []RecipientResult `json:"results"`
}

// CostEstimateRequest represents a cost calculation query
type CostEstimateRequest struct {
	Message    string   `json:"message" validate:"required,min=1,max=918"`
	Recipients []string `json:"recipients" validate:"required,min=1,max=500,dive,required"`
}

// CostEstimateResponse represents a cost calculation result
type CostEstimateResponse struct {
	Parts           int      `json:"parts"`
	ValidRecipients int      `json:"valid_recipients"`
	Invalid         []string `json:"invalid_recipients,omitempty"`
	UnitCost        uint64   `json:"unit_cost"`
	TotalCost       uint64   `json:"total_cost"`
	Balance         uint64   `json:"balance"`
	Affordable      bool     `json:"affordable"`
}

// MessageDTO represents one message in history listings
type MessageDTO struct {
	UUID              string  `json:"uuid"`
	Recipient         string  `json:"recipient"`
	Content           string  `json:"content"`
	SenderID          string  `json:"sender_id"`
	Parts             int     `json:"parts"`
	Cost              uint64  `json:"cost"`
	Status            string  `json:"status"`
	FailureReason     *string `json:"failure_reason,omitempty"`
	ProviderMessageID *string `json:"provider_message_id,omitempty"`
	CreatedAt         string  `json:"created_at"`
	DeliveredAt       *string `json:"delivered_at,omitempty"`
}

// MessageHistoryResponse represents a page of message history
type MessageHistoryResponse struct {
	Messages []MessageDTO     `json:"messages"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	Counts   map[string]int64 `json:"counts,omitempty"`
}

// BalanceResponse represents the wallet state
type BalanceResponse struct {
	Balance  uint64 `json:"balance"`
	UnitCost uint64 `json:"unit_cost"`
}
