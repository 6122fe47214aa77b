package dto

// CreateProductRequest represents the payload for adding a product
type CreateProductRequest struct {
	Name          string  `json:"name" validate:"required,min=1,max=120"`
	Description   *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Category      *string `json:"category,omitempty" validate:"omitempty,max=60"`
	ImageURL      *string `json:"image_url,omitempty" validate:"omitempty,url,max=512"`
	Price         uint64  `json:"price" validate:"required,gt=0"`
	CostPrice     uint64  `json:"cost_price" validate:"omitempty"`
	Quantity      int     `json:"quantity" validate:"gte=0"`
	LowStockAlert int     `json:"low_stock_alert" validate:"gte=0"`
	IsListed      *bool   `json:"is_listed,omitempty"`
}

// UpdateProductRequest represents a partial product update
type UpdateProductRequest struct {
	Name          *string `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Description   *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Category      *string `json:"category,omitempty" validate:"omitempty,max=60"`
	ImageURL      *string `json:"image_url,omitempty" validate:"omitempty,url,max=512"`
	Price         *uint64 `json:"price,omitempty" validate:"omitempty,gt=0"`
	CostPrice     *uint64 `json:"cost_price,omitempty"`
	LowStockAlert *int    `json:"low_stock_alert,omitempty" validate:"omitempty,gte=0"`
	IsListed      *bool   `json:"is_listed,omitempty"`
}

// ProductDTO represents a product in API responses
type ProductDTO struct {
	UUID          string  `json:"uuid"`
	Name          string  `json:"name"`
	Description   *string `json:"description,omitempty"`
	Category      *string `json:"category,omitempty"`
	ImageURL      *string `json:"image_url,omitempty"`
	Price         uint64  `json:"price"`
	CostPrice     uint64  `json:"cost_price"`
	Quantity      int     `json:"quantity"`
	LowStockAlert int     `json:"low_stock_alert"`
	LowStock      bool    `json:"low_stock"`
	IsArchived    *bool   `json:"is_archived"`
	IsListed      *bool   `json:"is_listed"`
	CreatedAt     string  `json:"created_at"`
}

// ProductListResponse represents a page of products
type ProductListResponse struct {
	Products []ProductDTO `json:"products"`
	Total    int64        `json:"total"`
	Page     int          `json:"page"`
	PageSize int          `json:"page_size"`
}

// RecordSaleRequest represents the payload for recording a stock sale
type RecordSaleRequest struct {
	ProductUUID   string  `json:"product_uuid" validate:"required,uuid4"`
	Quantity      int     `json:"quantity" validate:"required,gt=0"`
	UnitPrice     *uint64 `json:"unit_price,omitempty" validate:"omitempty,gt=0"`
	CustomerName  *string `json:"customer_name,omitempty" validate:"omitempty,max=120"`
	CustomerPhone *string `json:"customer_phone,omitempty" validate:"omitempty,max=15"`
	SoldAt        *string `json:"sold_at,omitempty"`
}

// SaleDTO represents a recorded sale in API responses
type SaleDTO struct {
	UUID          string  `json:"uuid"`
	ProductUUID   string  `json:"product_uuid"`
	ProductName   string  `json:"product_name"`
	Quantity      int     `json:"quantity"`
	UnitPrice     uint64  `json:"unit_price"`
	Total         uint64  `json:"total"`
	Profit        int64   `json:"profit"`
	CustomerName  *string `json:"customer_name,omitempty"`
	CustomerPhone *string `json:"customer_phone,omitempty"`
	SoldAt        string  `json:"sold_at"`
}

// SalesSummaryResponse aggregates the most recent day with sales
type SalesSummaryResponse struct {
	Date    string `json:"date"`
	Count   int64  `json:"count"`
	Revenue uint64 `json:"revenue"`
	Profit  int64  `json:"profit"`
}

// SalesListResponse represents a page of sales
type SalesListResponse struct {
	Sales    []SaleDTO `json:"sales"`
	Total    int64     `json:"total"`
	Revenue  uint64    `json:"revenue"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
}
