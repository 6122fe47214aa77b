// Package dto contains Data Transfer Objects for API request and response structures
package dto

// SignupRequest represents the request payload for account creation
type SignupRequest struct {
	BusinessName string `json:"business_name" validate:"required,min=2,max=120" example:"Akos Fashion"`
	Email        string `json:"email" validate:"required,email,max=255" example:"ama@akosfashion.com"`
	Phone        string `json:"phone" validate:"required,min=9,max=15" example:"0244123456"`
	Password     string `json:"password" validate:"required,min=8,max=100,password_strength" example:"SecurePass123!"`
	SenderID     string `json:"sender_id,omitempty" validate:"omitempty,max=11" example:"AkosFashion"`
}

// SignupResponse represents the successful signup response
type SignupResponse struct {
	Message string   `json:"message"`
	User    UserInfo `json:"user"`
	Session *Session `json:"session,omitempty"`
}

// LoginRequest represents the request payload for user login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=255" example:"ama@akosfashion.com"`
	Password string `json:"password" validate:"required,min=8,max=100" example:"SecurePass123!"`
}

// LoginResponse represents the successful login response
type LoginResponse struct {
	Message string   `json:"message"`
	User    UserInfo `json:"user"`
	Session *Session `json:"session"`
}

// Session carries the issued token pair
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type" example:"Bearer"`
	ExpiresIn    int    `json:"expires_in" example:"86400"`
}

// UserInfo represents user information returned in auth responses
type UserInfo struct {
	ID           uint   `json:"id" example:"123"`
	UUID         string `json:"uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	BusinessName string `json:"business_name" example:"Akos Fashion"`
	Email        string `json:"email" example:"ama@akosfashion.com"`
	Phone        string `json:"phone" example:"233244123456"`
	SenderID     string `json:"sender_id,omitempty" example:"AkosFashion"`
	SMSBalance   uint64 `json:"sms_balance" example:"2000"`
	IsPremium    bool   `json:"is_premium" example:"false"`
	CreatedAt    string `json:"created_at" example:"2024-01-15T10:30:00Z"`
}

// RefreshTokenRequest represents the request to exchange a refresh token
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// ForgotPasswordRequest represents the request to initiate password reset
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

// ForgotPasswordResponse represents the response after requesting password reset
type ForgotPasswordResponse struct {
	Message string `json:"message"`
}

// ResetPasswordRequest represents the request to reset password with a token
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required,len=64"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=100,password_strength"`
}

// ResetPasswordResponse represents the response after a password reset
type ResetPasswordResponse struct {
	Message string `json:"message"`
}

// ChangePasswordRequest represents an authenticated password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required,min=8,max=100"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=100,password_strength"`
}
