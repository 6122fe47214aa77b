package middleware

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v3"
	"github.com/nkwabiz/nkwabiz/app/dto"
	"github.com/nkwabiz/nkwabiz/app/services"
	businessflow "github.com/nkwabiz/nkwabiz/business_flow"
	"github.com/nkwabiz/nkwabiz/config"
)

// APIKeyMiddleware authenticates developer API requests by key and
// applies per-key rate limiting
type APIKeyMiddleware struct {
	developerFlow businessflow.DeveloperFlow
	rateLimiter   services.RateLimiter
	cfg           *config.DeveloperConfig
}

// NewAPIKeyMiddleware creates a new API key middleware
func NewAPIKeyMiddleware(developerFlow businessflow.DeveloperFlow, rateLimiter services.RateLimiter, cfg *config.DeveloperConfig) *APIKeyMiddleware {
	return &APIKeyMiddleware{
		developerFlow: developerFlow,
		rateLimiter:   rateLimiter,
		cfg:           cfg,
	}
}

// Authenticate validates the X-API-Key header and stores the key record
// in locals
func (m *APIKeyMiddleware) Authenticate() fiber.Handler {
	return func(c fiber.Ctx) error {
		plaintext := c.Get("X-API-Key")
		if plaintext == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
				Success: false,
				Message: "X-API-Key header is required",
				Error: dto.ErrorDetail{
					Code: "MISSING_API_KEY",
				},
			})
		}

		key, err := m.developerFlow.AuthenticateKey(context.Background(), plaintext)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
				Success: false,
				Message: "Invalid API key",
				Error: dto.ErrorDetail{
					Code: "INVALID_API_KEY",
				},
			})
		}

		limit := key.RateLimit
		if limit <= 0 {
			limit = m.cfg.DefaultRateLimit
		}

		allowed, err := m.rateLimiter.Allow(context.Background(), fmt.Sprintf("apikey:%d", key.ID), limit, m.cfg.RateLimitWindow)
		if err != nil {
			// Limiter backend failure must not take the API down
			allowed = true
		}
		if !allowed {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
				Success: false,
				Message: "Rate limit exceeded for this API key",
				Error: dto.ErrorDetail{
					Code: "RATE_LIMITED",
				},
			})
		}

		c.Locals("api_key", key)
		c.Locals("user_id", key.UserID)

		return c.Next()
	}
}
