package handlers

import (
	"crypto/subtle"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/nkwabiz/nkwabiz/app/dto"
	businessflow "github.com/nkwabiz/nkwabiz/business_flow"
	"github.com/nkwabiz/nkwabiz/config"
)

// BlogHandlerInterface defines the contract for blog handlers
type BlogHandlerInterface interface {
	Create(c fiber.Ctx) error
	List(c fiber.Ctx) error
	BySlug(c fiber.Ctx) error
}

// BlogHandler handles blog HTTP requests
type BlogHandler struct {
	blogFlow  businessflow.BlogFlow
	security  *config.SecurityConfig
	validator *validator.Validate
}

// NewBlogHandler creates a new blog handler
func NewBlogHandler(blogFlow businessflow.BlogFlow, security *config.SecurityConfig) *BlogHandler {
	return &BlogHandler{
		blogFlow:  blogFlow,
		security:  security,
		validator: validator.New(),
	}
}

// Create authors a post. Authoring is restricted to the configured
// admin token rather than regular user accounts.
func (h *BlogHandler) Create(c fiber.Ctx) error {
	token := c.Get("X-Admin-Token")
	if h.security.AdminAPIToken == "" ||
		subtle.ConstantTimeCompare([]byte(token), []byte(h.security.AdminAPIToken)) != 1 {
		return errorResponse(c, fiber.StatusForbidden, "Admin access required", "ADMIN_REQUIRED", nil)
	}

	var req dto.CreateBlogPostRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	result, err := h.blogFlow.CreatePost(createRequestContext(c, "/api/v1/blog"), &req, clientMetadata(c))
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to create post", "BLOG_CREATE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusCreated, "Post created", result)
}

// List returns published posts
func (h *BlogHandler) List(c fiber.Ctx) error {
	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 10)

	result, err := h.blogFlow.PublishedPosts(createRequestContext(c, "/api/v1/blog"), page, pageSize)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Failed to list posts", "BLOG_LIST_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Posts listed", result)
}

// BySlug serves one published post
func (h *BlogHandler) BySlug(c fiber.Ctx) error {
	result, err := h.blogFlow.PostBySlug(createRequestContext(c, "/api/v1/blog/:slug"), c.Params("slug"))
	if err != nil {
		if businessflow.IsBlogPostNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Post not found", "BLOG_POST_NOT_FOUND", nil)
		}
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to load post", "BLOG_LOOKUP_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Post loaded", result)
}
