package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/nkwabiz/nkwabiz/app/dto"
	businessflow "github.com/nkwabiz/nkwabiz/business_flow"
	"github.com/nkwabiz/nkwabiz/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBlogFlow struct {
	created *dto.CreateBlogPostRequest
}

func (f *stubBlogFlow) CreatePost(ctx context.Context, req *dto.CreateBlogPostRequest, metadata *businessflow.ClientMetadata) (*dto.BlogPostDTO, error) {
	f.created = req
	return &dto.BlogPostDTO{Title: req.Title}, nil
}

func (f *stubBlogFlow) PublishedPosts(ctx context.Context, page, pageSize int) (*dto.BlogListResponse, error) {
	return &dto.BlogListResponse{}, nil
}

func (f *stubBlogFlow) PostBySlug(ctx context.Context, postSlug string) (*dto.BlogPostDTO, error) {
	return nil, nil
}

func TestBlogCreateAdminToken(t *testing.T) {
	newApp := func(flow businessflow.BlogFlow, adminToken string) *fiber.App {
		app := fiber.New()
		handler := NewBlogHandler(flow, &config.SecurityConfig{AdminAPIToken: adminToken})
		app.Post("/blog", handler.Create)
		return app
	}

	post := func(app *fiber.App, token string) *http.Response {
		req := httptest.NewRequest(http.MethodPost, "/blog",
			strings.NewReader(`{"title":"Stock tips","body":"Keep your shelves counted.","author":"Ama"}`))
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("X-Admin-Token", token)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}

	t.Run("CorrectToken", func(t *testing.T) {
		flow := &stubBlogFlow{}
		resp := post(newApp(flow, "sekrit"), "sekrit")
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		require.NotNil(t, flow.created)
		assert.Equal(t, "Stock tips", flow.created.Title)
	})

	t.Run("WrongToken", func(t *testing.T) {
		flow := &stubBlogFlow{}
		resp := post(newApp(flow, "sekrit"), "wrong")
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Nil(t, flow.created)
	})

	t.Run("UnconfiguredTokenRejectsAll", func(t *testing.T) {
		flow := &stubBlogFlow{}
		resp := post(newApp(flow, ""), "")
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Nil(t, flow.created)
	})
}
