package dto

// DeliveryReportRequest represents a provider delivery callback. The
// provider is inconsistent about field names across API versions, so
// the message identifier and status are accepted under several aliases;
// resolution order is message_id, then sms_id, then id.
type DeliveryReportRequest struct {
	MessageID string `json:"message_id,omitempty" query:"message_id" form:"message_id"`
	SMSID     string `json:"sms_id,omitempty" query:"sms_id" form:"sms_id"`
	ID        string `json:"id,omitempty" query:"id" form:"id"`

	Status         string `json:"status,omitempty" query:"status" form:"status"`
	DeliveryStatus string `json:"delivery_status,omitempty" query:"delivery_status" form:"delivery_status"`

	Reason      string `json:"reason,omitempty" query:"reason" form:"reason"`
	DeliveredAt string `json:"delivered_at,omitempty" query:"delivered_at" form:"delivered_at"`
}

// ResolveMessageID returns the first populated identifier alias
func (r *DeliveryReportRequest) ResolveMessageID() string {
	if r.MessageID != "" {
		return r.MessageID
	}
	if r.SMSID != "" {
		return r.SMSID
	}
	return r.ID
}

// ResolveStatus returns the first populated status alias
func (r *DeliveryReportRequest) ResolveStatus() string {
	if r.Status != "" {
		return r.Status
	}
	return r.DeliveryStatus
}

// DeliveryReportResponse acknowledges a delivery callback
type DeliveryReportResponse struct {
	Acknowledged bool   `json:"acknowledged"`
	Result       string `json:"result"`
}
