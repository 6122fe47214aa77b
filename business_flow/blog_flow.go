package businessflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/nkwabiz/nkwabiz/app/dto"
	"github.com/nkwabiz/nkwabiz/models"
	"github.com/nkwabiz/nkwabiz/repository"
	"github.com/nkwabiz/nkwabiz/utils"
	"gorm.io/gorm"
)

// BlogFlow handles the public blog
type BlogFlow interface {
	CreatePost(ctx context.Context, req *dto.CreateBlogPostRequest, metadata *ClientMetadata) (*dto.BlogPostDTO, error)
	PublishedPosts(ctx context.Context, page, pageSize int) (*dto.BlogListResponse, error)
	PostBySlug(ctx context.Context, postSlug string) (*dto.BlogPostDTO, error)
}

// BlogFlowImpl implements the blog business flow
type BlogFlowImpl struct {
	blogRepo repository.BlogPostRepository
	db       *gorm.DB
}

// NewBlogFlow creates a new blog flow instance
func NewBlogFlow(blogRepo repository.BlogPostRepository, db *gorm.DB) BlogFlow {
	return &BlogFlowImpl{blogRepo: blogRepo, db: db}
}

// CreatePost authors a post; the route guards admin access
func (b *BlogFlowImpl) CreatePost(ctx context.Context, req *dto.CreateBlogPostRequest, metadata *ClientMetadata) (*dto.BlogPostDTO, error) {
	postSlug, err := b.uniqueSlug(ctx, req.Title)
	if err != nil {
		return nil, err
	}

	now := utils.UTCNow()
	post := &models.BlogPost{
		UUID:        uuid.New(),
		Title:       req.Title,
		Slug:        postSlug,
		Excerpt:     req.Excerpt,
		Body:        req.Body,
		Author:      req.Author,
		ImageURL:    req.ImageURL,
		IsPublished: utils.ToPtr(req.Publish),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Publish {
		post.PublishedAt = &now
	}

	if err := b.blogRepo.Save(ctx, post); err != nil {
		return nil, NewBusinessError("BLOG_CREATE_FAILED", "Failed to create post", err)
	}

	result := toBlogPostDTO(*post, true)
	return &result, nil
}

// PublishedPosts lists published posts, newest first, bodies omitted
func (b *BlogFlowImpl) PublishedPosts(ctx context.Context, page, pageSize int) (*dto.BlogListResponse, error) {
	if page < 1 {
		return nil, NewBusinessError("INVALID_FILTER", "Invalid page", ErrInvalidPage)
	}
	if pageSize < 1 || pageSize > 100 {
		return nil, NewBusinessError("INVALID_FILTER", "Invalid page size", ErrInvalidPageSize)
	}

	filter := models.BlogPostFilter{IsPublished: utils.ToPtr(true)}

	total, err := b.blogRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("BLOG_LIST_FAILED", "Failed to count posts", err)
	}

	posts, err := b.blogRepo.ByFilter(ctx, filter, "published_at DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("BLOG_LIST_FAILED", "Failed to list posts", err)
	}

	out := make([]dto.BlogPostDTO, 0, len(posts))
	for _, post := range posts {
		out = append(out, toBlogPostDTO(*post, false))
	}

	return &dto.BlogListResponse{
		Posts:    out,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// PostBySlug serves one published post with its body
func (b *BlogFlowImpl) PostBySlug(ctx context.Context, postSlug string) (*dto.BlogPostDTO, error) {
	post, err := b.blogRepo.BySlug(ctx, postSlug)
	if err != nil {
		return nil, NewBusinessError("BLOG_LOOKUP_FAILED", "Failed to load post", err)
	}
	if post == nil || !utils.IsTrue(post.IsPublished) {
		return nil, NewBusinessError("BLOG_POST_NOT_FOUND", "Post not found", ErrBlogPostNotFound)
	}
	result := toBlogPostDTO(*post, true)
	return &result, nil
}

func (b *BlogFlowImpl) uniqueSlug(ctx context.Context, title string) (string, error) {
	base := slug.Make(title)
	if base == "" {
		base = "post"
	}
	candidate := base
	for i := 2; ; i++ {
		existing, err := b.blogRepo.BySlug(ctx, candidate)
		if err != nil {
			return "", NewBusinessError("BLOG_SLUG_FAILED", "Failed to check slug", err)
		}
		if existing == nil {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

func toBlogPostDTO(p models.BlogPost, includeBody bool) dto.BlogPostDTO {
	out := dto.BlogPostDTO{
		UUID:        p.UUID.String(),
		Title:       p.Title,
		Slug:        p.Slug,
		Excerpt:     p.Excerpt,
		Author:      p.Author,
		ImageURL:    p.ImageURL,
		PublishedAt: formatTimePtr(p.PublishedAt),
	}
	if includeBody {
		out.Body = p.Body
	}
	return out
}
