package dto

// DashboardResponse aggregates the business overview figures
type DashboardResponse struct {
	SMSBalance      uint64           `json:"sms_balance"`
	IsPremium       bool             `json:"is_premium"`
	PremiumExpiry   *string          `json:"premium_expiry,omitempty"`
	MessageCounts   map[string]int64 `json:"message_counts"`
	RevenueThisWeek uint64           `json:"revenue_this_week"`
	RevenueToday    uint64           `json:"revenue_today"`
	ExpensesMonth   uint64           `json:"expenses_this_month"`
	ProductCount    int64            `json:"product_count"`
	LowStockCount   int64            `json:"low_stock_count"`
	SalesCount      int64            `json:"sales_count"`
}
