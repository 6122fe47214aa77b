package dto

// CreateExpenseRequest represents the payload for recording an expense
type CreateExpenseRequest struct {
	Title      string  `json:"title" validate:"required,min=1,max=120"`
	Category   string  `json:"category" validate:"required,min=1,max=60"`
	Amount     uint64  `json:"amount" validate:"required,gt=0"`
	Notes      *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
	IncurredAt *string `json:"incurred_at,omitempty"`
}

// UpdateExpenseRequest represents a partial expense update
type UpdateExpenseRequest struct {
	Title      *string `json:"title,omitempty" validate:"omitempty,min=1,max=120"`
	Category   *string `json:"category,omitempty" validate:"omitempty,min=1,max=60"`
	Amount     *uint64 `json:"amount,omitempty" validate:"omitempty,gt=0"`
	Notes      *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
	IncurredAt *string `json:"incurred_at,omitempty"`
}

// ExpenseDTO represents an expense in API responses
type ExpenseDTO struct {
	UUID       string  `json:"uuid"`
	Title      string  `json:"title"`
	Category   string  `json:"category"`
	Amount     uint64  `json:"amount"`
	Notes      *string `json:"notes,omitempty"`
	IncurredAt string  `json:"incurred_at"`
}

// ExpenseListResponse represents a page of expenses
type ExpenseListResponse struct {
	Expenses []ExpenseDTO `json:"expenses"`
	Total    int64        `json:"total"`
	Page     int          `json:"page"`
	PageSize int          `json:"page_size"`
}

// ExpenseSummaryDTO is one month of aggregated expenses
type ExpenseSummaryDTO struct {
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Total uint64 `json:"total"`
	Count int    `json:"count"`
}

// ExpenseSummaryResponse represents the monthly expense aggregation
type ExpenseSummaryResponse struct {
	Months []ExpenseSummaryDTO `json:"months"`
}
