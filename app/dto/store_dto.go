package dto

// UpsertStoreRequest represents the payload for creating or updating a storefront
type UpsertStoreRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=120"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	LogoURL     *string `json:"logo_url,omitempty" validate:"omitempty,url,max=512"`
	WhatsApp    string  `json:"whatsapp" validate:"required,min=9,max=15"`
	Location    *string `json:"location,omitempty" validate:"omitempty,max=255"`
	IsPublished *bool   `json:"is_published,omitempty"`
}

// StoreDTO represents a storefront in API responses
type StoreDTO struct {
	UUID         string  `json:"uuid"`
	Name         string  `json:"name"`
	Slug         string  `json:"slug"`
	Description  *string `json:"description,omitempty"`
	LogoURL      *string `json:"logo_url,omitempty"`
	WhatsApp     string  `json:"whatsapp"`
	WhatsAppLink string  `json:"whatsapp_link"`
	Location     *string `json:"location,omitempty"`
	IsPublished  *bool   `json:"is_published"`
}

// PublicStoreResponse is the storefront page payload
type PublicStoreResponse struct {
	Store    StoreDTO     `json:"store"`
	Products []ProductDTO `json:"products"`
}
