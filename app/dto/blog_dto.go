package dto

// CreateBlogPostRequest represents the payload for authoring a post
type CreateBlogPostRequest struct {
	Title    string  `json:"title" validate:"required,min=3,max=200"`
	Excerpt  *string `json:"excerpt,omitempty" validate:"omitempty,max=500"`
	Body     string  `json:"body" validate:"required,min=10"`
	Author   string  `json:"author" validate:"required,min=2,max=120"`
	ImageURL *string `json:"image_url,omitempty" validate:"omitempty,url,max=512"`
	Publish  bool    `json:"publish"`
}

// BlogPostDTO represents a post in API responses
type BlogPostDTO struct {
	UUID        string  `json:"uuid"`
	Title       string  `json:"title"`
	Slug        string  `json:"slug"`
	Excerpt     *string `json:"excerpt,omitempty"`
	Body        string  `json:"body,omitempty"`
	Author      string  `json:"author"`
	ImageURL    *string `json:"image_url,omitempty"`
	PublishedAt *string `json:"published_at,omitempty"`
}

// BlogListResponse represents a page of published posts
type BlogListResponse struct {
	Posts    []BlogPostDTO `json:"posts"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}
