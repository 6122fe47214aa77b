package businessflow

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/nkwabiz/nkwabiz/app/dto"
	"github.com/nkwabiz/nkwabiz/models"
	"github.com/nkwabiz/nkwabiz/repository"
	"github.com/nkwabiz/nkwabiz/utils"
	"gorm.io/gorm"
)

const apiKeyPrefix = "nkwa_"

// DeveloperFlow manages API keys for the public developer surface
type DeveloperFlow interface {
	CreateAPIKey(ctx context.Context, userID uint, req *dto.CreateAPIKeyRequest, metadata *ClientMetadata) (*dto.CreateAPIKeyResponse, error)
	ListAPIKeys(ctx context.Context, userID uint) (*dto.APIKeyListResponse, error)
	RevokeAPIKey(ctx context.Context, userID uint, keyUUID string, metadata *ClientMetadata) error
	AuthenticateKey(ctx context.Context, plaintext string) (*models.APIKey, error)
	UsageStats(ctx context.Context, key *models.APIKey) (*dto.APIKeyStatsResponse, error)
	ConfigureWebhook(ctx context.Context, userID uint, keyUUID string, req *dto.ConfigureWebhookRequest, metadata *ClientMetadata) (*dto.ConfigureWebhookResponse, error)
	DisableWebhook(ctx context.Context, userID uint, keyUUID string, metadata *ClientMetadata) error
}

// DeveloperFlowImpl implements the developer business flow
type DeveloperFlowImpl struct {
	apiKeyRepo  repository.APIKeyRepository
	messageRepo repository.MessageRepository
	db          *gorm.DB
}

// NewDeveloperFlow creates a new developer flow instance
func NewDeveloperFlow(apiKeyRepo repository.APIKeyRepository, messageRepo repository.MessageRepository, db *gorm.DB) DeveloperFlow {
	return &DeveloperFlowImpl{apiKeyRepo: apiKeyRepo, messageRepo: messageRepo, db: db}
}

// CreateAPIKey issues a key. Only the SHA-256 of the plaintext is
// stored; the plaintext appears once in the response and cannot be
// recovered afterwards.
func (d *DeveloperFlowImpl) CreateAPIKey(ctx context.Context, userID uint, req *dto.CreateAPIKeyRequest, metadata *ClientMetadata) (*dto.CreateAPIKeyResponse, error) {
	plaintext, err := generateAPIKey()
	if err != nil {
		return nil, NewBusinessError("API_KEY_GENERATE_FAILED", "Failed to generate key", err)
	}
	keyHash := HashAPIKey(plaintext)

	rateLimit := 0
	if req.RateLimit != nil {
		rateLimit = *req.RateLimit
	}

	var webhookSecret *string
	if req.WebhookURL != nil && *req.WebhookURL != "" {
		secret, err := generateWebhookSecret()
		if err != nil {
			return nil, NewBusinessError("API_KEY_GENERATE_FAILED", "Failed to generate webhook secret", err)
		}
		webhookSecret = &secret
	}

	now := utils.UTCNow()
	key := &models.APIKey{
		UUID:          uuid.New(),
		UserID:        userID,
		Name:          req.Name,
		KeyHash:       keyHash,
		KeyPrefix:     plaintext[:len(apiKeyPrefix)+7],
		RateLimit:     rateLimit,
		WebhookURL:    req.WebhookURL,
		WebhookSecret: webhookSecret,
		IsActive:      utils.ToPtr(true),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := d.apiKeyRepo.Save(ctx, key); err != nil {
		return nil, NewBusinessError("API_KEY_CREATE_FAILED", "Failed to store key", err)
	}

	return &dto.CreateAPIKeyResponse{
		UUID:          key.UUID.String(),
		Name:          key.Name,
		Key:           plaintext,
		KeyPrefix:     key.KeyPrefix,
		WebhookSecret: webhookSecret,
		Message:       "Store this key now; it will not be shown again",
	}, nil
}

// ListAPIKeys returns the caller's keys without secrets
func (d *DeveloperFlowImpl) ListAPIKeys(ctx context.Context, userID uint) (*dto.APIKeyListResponse, error) {
	keys, err := d.apiKeyRepo.ByFilter(ctx, models.APIKeyFilter{UserID: &userID}, "created_at DESC", 0, 0)
	if err != nil {
		return nil, NewBusinessError("API_KEY_LIST_FAILED", "Failed to list keys", err)
	}

	out := make([]dto.APIKeyDTO, 0, len(keys))
	for _, key := range keys {
		out = append(out, dto.APIKeyDTO{
			UUID:          key.UUID.String(),
			Name:          key.Name,
			KeyPrefix:     key.KeyPrefix,
			RateLimit:     key.RateLimit,
			TotalRequests: key.TotalRequests,
			WebhookURL:    key.WebhookURL,
			IsActive:      key.IsActive,
			LastUsedAt:    formatTimePtr(key.LastUsedAt),
			CreatedAt:     key.CreatedAt.Format(time.RFC3339),
		})
	}
	return &dto.APIKeyListResponse{Keys: out}, nil
}

// RevokeAPIKey deactivates an owned key
func (d *DeveloperFlowImpl) RevokeAPIKey(ctx context.Context, userID uint, keyUUID string, metadata *ClientMetadata) error {
	key, err := d.ownedKey(ctx, userID, keyUUID)
	if err != nil {
		return err
	}

	if err := d.apiKeyRepo.Revoke(ctx, key.ID, utils.UTCNow()); err != nil {
		return NewBusinessError("API_KEY_REVOKE_FAILED", "Failed to revoke key", err)
	}
	return nil
}

// UsageStats reports the authenticated key's request counter and its
// messages broken down by status
func (d *DeveloperFlowImpl) UsageStats(ctx context.Context, key *models.APIKey) (*dto.APIKeyStatsResponse, error) {
	counts, err := d.messageRepo.CountByStatusForKey(ctx, key.ID)
	if err != nil {
		return nil, NewBusinessError("API_KEY_STATS_FAILED", "Failed to load usage stats", err)
	}

	return &dto.APIKeyStatsResponse{
		Name:          key.Name,
		KeyPrefix:     key.KeyPrefix,
		RateLimit:     key.RateLimit,
		TotalRequests: key.TotalRequests,
		Messages:      counts,
	}, nil
}

// ConfigureWebhook sets an owned key's delivery webhook. A fresh
// signing secret is generated on every call and returned once.
func (d *DeveloperFlowImpl) ConfigureWebhook(ctx context.Context, userID uint, keyUUID string, req *dto.ConfigureWebhookRequest, metadata *ClientMetadata) (*dto.ConfigureWebhookResponse, error) {
	key, err := d.ownedKey(ctx, userID, keyUUID)
	if err != nil {
		return nil, err
	}

	secret, err := generateWebhookSecret()
	if err != nil {
		return nil, NewBusinessError("WEBHOOK_CONFIGURE_FAILED", "Failed to generate webhook secret", err)
	}

	if err := d.apiKeyRepo.SetWebhook(ctx, key.ID, &req.WebhookURL, &secret); err != nil {
		return nil, NewBusinessError("WEBHOOK_CONFIGURE_FAILED", "Failed to store webhook", err)
	}

	return &dto.ConfigureWebhookResponse{
		WebhookURL:    req.WebhookURL,
		WebhookSecret: secret,
		Message:       "Store this secret now; it will not be shown again",
	}, nil
}

// DisableWebhook clears an owned key's delivery webhook
func (d *DeveloperFlowImpl) DisableWebhook(ctx context.Context, userID uint, keyUUID string, metadata *ClientMetadata) error {
	key, err := d.ownedKey(ctx, userID, keyUUID)
	if err != nil {
		return err
	}

	if err := d.apiKeyRepo.SetWebhook(ctx, key.ID, nil, nil); err != nil {
		return NewBusinessError("WEBHOOK_DISABLE_FAILED", "Failed to clear webhook", err)
	}
	return nil
}

func (d *DeveloperFlowImpl) ownedKey(ctx context.Context, userID uint, keyUUID string) (*models.APIKey, error) {
	parsed, err := uuid.Parse(keyUUID)
	if err != nil {
		return nil, NewBusinessError("API_KEY_NOT_FOUND", "API key not found", ErrAPIKeyNotFound)
	}

	keys, err := d.apiKeyRepo.ByFilter(ctx, models.APIKeyFilter{UUID: &parsed, UserID: &userID}, "", 1, 0)
	if err != nil {
		return nil, NewBusinessError("API_KEY_LOOKUP_FAILED", "Failed to load key", err)
	}
	if len(keys) == 0 {
		return nil, NewBusinessError("API_KEY_NOT_FOUND", "API key not found", ErrAPIKeyNotFound)
	}
	return keys[0], nil
}

// AuthenticateKey resolves a plaintext key to its active record and
// touches its last-used timestamp
func (d *DeveloperFlowImpl) AuthenticateKey(ctx context.Context, plaintext string) (*models.APIKey, error) {
	if plaintext == "" {
		return nil, NewBusinessError("API_KEY_NOT_FOUND", "API key not found", ErrAPIKeyNotFound)
	}

	key, err := d.apiKeyRepo.ByKeyHash(ctx, HashAPIKey(plaintext))
	if err != nil {
		return nil, NewBusinessError("API_KEY_LOOKUP_FAILED", "Failed to look up key", err)
	}
	if key == nil {
		return nil, NewBusinessError("API_KEY_NOT_FOUND", "API key not found", ErrAPIKeyNotFound)
	}

	//nolint:errcheck
	_ = d.apiKeyRepo.TouchLastUsed(ctx, key.ID, utils.UTCNow())
	return key, nil
}

// HashAPIKey is the stored form of a plaintext key
func HashAPIKey(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

func generateAPIKey() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return apiKeyPrefix + hex.EncodeToString(buf), nil
}

func generateWebhookSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
