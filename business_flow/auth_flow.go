package businessflow

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nkwabiz/nkwabiz/app/dto"
	"github.com/nkwabiz/nkwabiz/app/services"
	"github.com/nkwabiz/nkwabiz/config"
	"github.com/nkwabiz/nkwabiz/models"
	"github.com/nkwabiz/nkwabiz/repository"
	"github.com/nkwabiz/nkwabiz/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthFlow handles account creation and session management
type AuthFlow interface {
	Signup(ctx context.Context, req *dto.SignupRequest, metadata *ClientMetadata) (*dto.SignupResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error)
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest, metadata *ClientMetadata) (*dto.Session, error)
	Logout(ctx context.Context, accessToken string) error
}

// AuthFlowImpl implements the auth business flow
type AuthFlowImpl struct {
	userRepo     repository.UserRepository
	paymentRepo  repository.PaymentRepository
	tokenService services.TokenService
	jwtConfig    *config.JWTConfig
	db           *gorm.DB
}

// NewAuthFlow creates a new auth flow instance
func NewAuthFlow(
	userRepo repository.UserRepository,
	paymentRepo repository.PaymentRepository,
	tokenService services.TokenService,
	jwtConfig *config.JWTConfig,
	db *gorm.DB,
) AuthFlow {
	return &AuthFlowImpl{
		userRepo:     userRepo,
		paymentRepo:  paymentRepo,
		tokenService: tokenService,
		jwtConfig:    jwtConfig,
		db:           db,
	}
}

// Signup registers a business account. Email uniqueness is checked
// up front and again enforced by the unique index at commit time.
func (a *AuthFlowImpl) Signup(ctx context.Context, req *dto.SignupRequest, metadata *ClientMetadata) (*dto.SignupResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := a.userRepo.ByEmail(ctx, email)
	if err != nil {
		return nil, NewBusinessError("USER_LOOKUP_FAILED", "Failed to check email", err)
	}
	if existing != nil {
		return nil, NewBusinessError("EMAIL_ALREADY_EXISTS", "An account with this email already exists", ErrEmailAlreadyExists)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, NewBusinessError("PASSWORD_HASH_FAILED", "Failed to hash password", err)
	}

	now := utils.UTCNow()
	user := &models.User{
		UUID:         uuid.New(),
		BusinessName: strings.TrimSpace(req.BusinessName),
		Email:        email,
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: string(hashedPassword),
		SenderID:     strings.TrimSpace(req.SenderID),
		SMSBalance:   0,
		IsActive:     utils.ToPtr(true),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = repository.WithTransaction(ctx, a.db, func(txCtx context.Context) error {
		return a.userRepo.Save(txCtx, user)
	})
	if err != nil {
		return nil, NewBusinessError("SIGNUP_FAILED", "Failed to create account", err)
	}

	session, err := a.issueSession(user.ID)
	if err != nil {
		return nil, err
	}

	return &dto.SignupResponse{
		Message: "Account created successfully",
		User:    ToUserInfo(*user, false),
		Session: session,
	}, nil
}

// Login authenticates by email and password and issues a token pair
func (a *AuthFlowImpl) Login(ctx context.Context, req *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := a.userRepo.ByEmail(ctx, email)
	if err != nil {
		return nil, NewBusinessError("USER_LOOKUP_FAILED", "Failed to load user", err)
	}
	if user == nil {
		// Same error as a bad password so the response does not leak
		// which emails are registered
		return nil, NewBusinessError("INVALID_CREDENTIALS", "Invalid email or password", ErrIncorrectPassword)
	}
	if !utils.IsTrue(user.IsActive) {
		return nil, NewBusinessError("ACCOUNT_INACTIVE", "Account is inactive", ErrAccountInactive)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, NewBusinessError("INVALID_CREDENTIALS", "Invalid email or password", ErrIncorrectPassword)
	}

	session, err := a.issueSession(user.ID)
	if err != nil {
		return nil, err
	}

	//nolint:errcheck
	_ = a.userRepo.UpdateLastLogin(ctx, user.ID, time.Now().UTC())

	return &dto.LoginResponse{
		Message: "Login successful",
		User:    ToUserInfo(*user, hasPremium(ctx, a.paymentRepo, user.ID)),
		Session: session,
	}, nil
}

// RefreshToken exchanges a refresh token for a new pair
func (a *AuthFlowImpl) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest, metadata *ClientMetadata) (*dto.Session, error) {
	accessToken, refreshToken, err := a.tokenService.RefreshToken(req.RefreshToken)
	if err != nil {
		return nil, NewBusinessError("TOKEN_REFRESH_FAILED", "Invalid or expired refresh token", err)
	}
	return &dto.Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(a.jwtConfig.AccessTokenTTL.Seconds()),
	}, nil
}

// Logout revokes the presented access token
func (a *AuthFlowImpl) Logout(ctx context.Context, accessToken string) error {
	if err := a.tokenService.RevokeToken(accessToken); err != nil {
		return NewBusinessError("LOGOUT_FAILED", "Failed to revoke token", err)
	}
	return nil
}

func (a *AuthFlowImpl) issueSession(userID uint) (*dto.Session, error) {
	accessToken, refreshToken, err := a.tokenService.GenerateTokens(userID)
	if err != nil {
		return nil, NewBusinessError("TOKEN_ISSUE_FAILED", "Failed to issue tokens", err)
	}
	return &dto.Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(a.jwtConfig.AccessTokenTTL.Seconds()),
	}, nil
}
