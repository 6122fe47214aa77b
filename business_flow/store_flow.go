package businessflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/nkwabiz/nkwabiz/app/dto"
	"github.com/nkwabiz/nkwabiz/models"
	"github.com/nkwabiz/nkwabiz/repository"
	"github.com/nkwabiz/nkwabiz/utils"
	"gorm.io/gorm"
)

// StoreFlow handles the public storefront
type StoreFlow interface {
	UpsertStore(ctx context.Context, userID uint, req *dto.UpsertStoreRequest, metadata *ClientMetadata) (*dto.StoreDTO, error)
	MyStore(ctx context.Context, userID uint) (*dto.StoreDTO, error)
	PublicStore(ctx context.Context, storeSlug string) (*dto.PublicStoreResponse, error)
}

// StoreFlowImpl implements the storefront business flow
type StoreFlowImpl struct {
	storeRepo   repository.StoreRepository
	productRepo repository.ProductRepository
	db          *gorm.DB
}

// NewStoreFlow creates a new store flow instance
func NewStoreFlow(storeRepo repository.StoreRepository, productRepo repository.ProductRepository, db *gorm.DB) StoreFlow {
	return &StoreFlowImpl{storeRepo: storeRepo, productRepo: productRepo, db: db}
}

// UpsertStore creates the caller's storefront or updates it in place.
// The slug is derived from the name on creation and never changes
// afterwards, so shared links stay valid across renames.
func (s *StoreFlowImpl) UpsertStore(ctx context.Context, userID uint, req *dto.UpsertStoreRequest, metadata *ClientMetadata) (*dto.StoreDTO, error) {
	store, err := s.storeRepo.ByUserID(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("STORE_LOOKUP_FAILED", "Failed to load store", err)
	}

	now := utils.UTCNow()
	if store == nil {
		storeSlug, err := s.uniqueSlug(ctx, req.Name)
		if err != nil {
			return nil, err
		}
		store = &models.Store{
			UUID:      uuid.New(),
			UserID:    userID,
			Slug:      storeSlug,
			CreatedAt: now,
		}
	}

	store.Name = strings.TrimSpace(req.Name)
	store.Description = req.Description
	store.LogoURL = req.LogoURL
	store.WhatsApp = strings.TrimSpace(req.WhatsApp)
	store.Location = req.Location
	if req.IsPublished != nil {
		store.IsPublished = req.IsPublished
	} else if store.IsPublished == nil {
		store.IsPublished = utils.ToPtr(true)
	}
	store.UpdatedAt = now

	if store.ID == 0 {
		err = s.storeRepo.Save(ctx, store)
	} else {
		err = s.storeRepo.Update(ctx, store)
	}
	if err != nil {
		return nil, NewBusinessError("STORE_SAVE_FAILED", "Failed to save store", err)
	}

	result := toStoreDTO(*store)
	return &result, nil
}

// MyStore returns the caller's storefront
func (s *StoreFlowImpl) MyStore(ctx context.Context, userID uint) (*dto.StoreDTO, error) {
	store, err := s.storeRepo.ByUserID(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("STORE_LOOKUP_FAILED", "Failed to load store", err)
	}
	if store == nil {
		return nil, NewBusinessError("STORE_NOT_FOUND", "Store not found", ErrStoreNotFound)
	}
	result := toStoreDTO(*store)
	return &result, nil
}

// PublicStore serves the unauthenticated storefront page with the
// owner's listed, unarchived products
func (s *StoreFlowImpl) PublicStore(ctx context.Context, storeSlug string) (*dto.PublicStoreResponse, error) {
	store, err := s.storeRepo.BySlug(ctx, storeSlug)
	if err != nil {
		return nil, NewBusinessError("STORE_LOOKUP_FAILED", "Failed to load store", err)
	}
	if store == nil || !utils.IsTrue(store.IsPublished) {
		return nil, NewBusinessError("STORE_NOT_FOUND", "Store not found", ErrStoreNotFound)
	}

	filter := models.ProductFilter{
		UserID:     &store.UserID,
		IsArchived: utils.ToPtr(false),
		IsListed:   utils.ToPtr(true),
	}
	products, err := s.productRepo.ByFilter(ctx, filter, "created_at DESC", 0, 0)
	if err != nil {
		return nil, NewBusinessError("STORE_LOOKUP_FAILED", "Failed to list products", err)
	}

	out := make([]dto.ProductDTO, 0, len(products))
	for _, product := range products {
		out = append(out, toProductDTO(*product))
	}

	return &dto.PublicStoreResponse{
		Store:    toStoreDTO(*store),
		Products: out,
	}, nil
}

// uniqueSlug slugifies the name and appends a counter until the slug is
// free
func (s *StoreFlowImpl) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := slug.Make(name)
	if base == "" {
		base = "store"
	}
	candidate := base
	for i := 2; ; i++ {
		existing, err := s.storeRepo.BySlug(ctx, candidate)
		if err != nil {
			return "", NewBusinessError("STORE_SLUG_FAILED", "Failed to check slug", err)
		}
		if existing == nil {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// WhatsAppLink builds a wa.me chat link for a normalized number
func WhatsAppLink(msisdn string) string {
	return "https://wa.me/" + strings.TrimPrefix(msisdn, "+")
}

func toStoreDTO(s models.Store) dto.StoreDTO {
	return dto.StoreDTO{
		UUID:         s.UUID.String(),
		Name:         s.Name,
		Slug:         s.Slug,
		Description:  s.Description,
		LogoURL:      s.LogoURL,
		WhatsApp:     s.WhatsApp,
		WhatsAppLink: WhatsAppLink(s.WhatsApp),
		Location:     s.Location,
		IsPublished:  s.IsPublished,
	}
}
