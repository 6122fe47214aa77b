package businessflow

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/nkwabiz/nkwabiz/app/dto"
	"github.com/nkwabiz/nkwabiz/app/services"
	"github.com/nkwabiz/nkwabiz/config"
	"github.com/nkwabiz/nkwabiz/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// PasswordFlow handles forgotten-password resets and password changes
type PasswordFlow interface {
	ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest, metadata *ClientMetadata) (*dto.ForgotPasswordResponse, error)
	ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest, metadata *ClientMetadata) (*dto.ResetPasswordResponse, error)
	ChangePassword(ctx context.Context, userID uint, req *dto.ChangePasswordRequest, metadata *ClientMetadata) error
}

// PasswordFlowImpl implements the password business flow
type PasswordFlowImpl struct {
	userRepo     repository.UserRepository
	emailService services.EmailService
	emailConfig  *config.EmailConfig
	resetTTL     time.Duration
	db           *gorm.DB
}

// NewPasswordFlow creates a new password flow instance
func NewPasswordFlow(
	userRepo repository.UserRepository,
	emailService services.EmailService,
	emailConfig *config.EmailConfig,
	resetTTL time.Duration,
	db *gorm.DB,
) PasswordFlow {
	if resetTTL <= 0 {
		resetTTL = 15 * time.Minute
	}
	return &PasswordFlowImpl{
		userRepo:     userRepo,
		emailService: emailService,
		emailConfig:  emailConfig,
		resetTTL:     resetTTL,
		db:           db,
	}
}

// ForgotPassword issues a short-lived reset token and emails the reset
// link. The response is identical whether or not the email is
// registered.
func (p *PasswordFlowImpl) ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest, metadata *ClientMetadata) (*dto.ForgotPasswordResponse, error) {
	response := &dto.ForgotPasswordResponse{
		Message: "If an account exists for this email, a reset link has been sent",
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := p.userRepo.ByEmail(ctx, email)
	if err != nil {
		return nil, NewBusinessError("USER_LOOKUP_FAILED", "Failed to load user", err)
	}
	if user == nil {
		return response, nil
	}

	token, err := generateResetToken()
	if err != nil {
		return nil, NewBusinessError("RESET_TOKEN_FAILED", "Failed to generate reset token", err)
	}

	expiry := time.Now().UTC().Add(p.resetTTL)
	if err := p.userRepo.SetResetToken(ctx, user.ID, token, expiry); err != nil {
		return nil, NewBusinessError("RESET_TOKEN_FAILED", "Failed to store reset token", err)
	}

	resetURL := fmt.Sprintf("%s?token=%s", p.emailConfig.ResetURLBase, token)
	if err := p.emailService.SendPasswordReset(ctx, user.Email, resetURL); err != nil {
		return nil, NewBusinessError("RESET_EMAIL_FAILED", "Failed to send reset email", err)
	}

	return response, nil
}

// ResetPassword consumes a reset token and sets the new password
func (p *PasswordFlowImpl) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest, metadata *ClientMetadata) (*dto.ResetPasswordResponse, error) {
	user, err := p.userRepo.ByResetToken(ctx, req.Token)
	if err != nil {
		return nil, NewBusinessError("USER_LOOKUP_FAILED", "Failed to look up reset token", err)
	}
	if user == nil {
		return nil, NewBusinessError("RESET_TOKEN_INVALID", "Reset token is invalid or expired", ErrResetTokenInvalid)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, NewBusinessError("PASSWORD_HASH_FAILED", "Failed to hash password", err)
	}

	err = repository.WithTransaction(ctx, p.db, func(txCtx context.Context) error {
		if err := p.userRepo.UpdatePassword(txCtx, user.ID, string(hashedPassword)); err != nil {
			return err
		}
		return p.userRepo.ClearResetToken(txCtx, user.ID)
	})
	if err != nil {
		return nil, NewBusinessError("PASSWORD_RESET_FAILED", "Failed to reset password", err)
	}

	return &dto.ResetPasswordResponse{Message: "Password reset successfully"}, nil
}

// ChangePassword verifies the current password before replacing it
func (p *PasswordFlowImpl) ChangePassword(ctx context.Context, userID uint, req *dto.ChangePasswordRequest, metadata *ClientMetadata) error {
	user, err := p.userRepo.ByID(ctx, userID)
	if err != nil {
		return NewBusinessError("USER_LOOKUP_FAILED", "Failed to load user", err)
	}
	if user == nil {
		return NewBusinessError("USER_NOT_FOUND", "User not found", ErrUserNotFound)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return NewBusinessError("INVALID_CREDENTIALS", "Current password is incorrect", ErrIncorrectPassword)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return NewBusinessError("PASSWORD_HASH_FAILED", "Failed to hash password", err)
	}

	if err := p.userRepo.UpdatePassword(ctx, userID, string(hashedPassword)); err != nil {
		return NewBusinessError("PASSWORD_CHANGE_FAILED", "Failed to change password", err)
	}
	return nil
}

// generateResetToken returns 32 random bytes hex encoded (64 chars)
func generateResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
