package dto

// CreateServiceRequest represents the payload for adding a service
type CreateServiceRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=120"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Price       uint64  `json:"price" validate:"required,gt=0"`
}

// UpdateServiceRequest represents a partial service update
type UpdateServiceRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Price       *uint64 `json:"price,omitempty" validate:"omitempty,gt=0"`
}

// ServiceDTO represents a service in API responses
type ServiceDTO struct {
	UUID        string  `json:"uuid"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Price       uint64  `json:"price"`
	IsArchived  *bool   `json:"is_archived"`
}

// ServiceListResponse lists a user's services
type ServiceListResponse struct {
	Services []ServiceDTO `json:"services"`
	Total    int64        `json:"total"`
}

// RecordServiceSaleRequest represents the payload for recording a rendered service
type RecordServiceSaleRequest struct {
	ServiceUUID   string  `json:"service_uuid" validate:"required,uuid4"`
	Amount        *uint64 `json:"amount,omitempty" validate:"omitempty,gt=0"`
	CustomerName  *string `json:"customer_name,omitempty" validate:"omitempty,max=120"`
	CustomerPhone *string `json:"customer_phone,omitempty" validate:"omitempty,max=15"`
	SoldAt        *string `json:"sold_at,omitempty"`
}

// ServiceSaleDTO represents a service sale in API responses
type ServiceSaleDTO struct {
	UUID          string  `json:"uuid"`
	ServiceUUID   string  `json:"service_uuid"`
	ServiceName   string  `json:"service_name"`
	Amount        uint64  `json:"amount"`
	CustomerName  *string `json:"customer_name,omitempty"`
	CustomerPhone *string `json:"customer_phone,omitempty"`
	SoldAt        string  `json:"sold_at"`
}

// ServiceSaleListResponse represents a page of service sales
type ServiceSaleListResponse struct {
	Sales    []ServiceSaleDTO `json:"sales"`
	Total    int64            `json:"total"`
	Revenue  uint64           `json:"revenue"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}
