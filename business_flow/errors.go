// Package businessflow contains the business logic for the application.
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// User-related errors
	ErrUserNotFound       = errors.New("user not found")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrIncorrectPassword  = errors.New("incorrect password")
	ErrEmailAlreadyExists = errors.New("email already exists")

	// Password reset errors
	ErrResetTokenInvalid = errors.New("reset token is invalid or expired")

	// SMS sending errors
	ErrMessageEmpty        = errors.New("message content is empty")
	ErrNoRecipients        = errors.New("no recipients provided")
	ErrNoValidRecipients   = errors.New("no valid recipients")
	ErrInvalidRecipients   = errors.New("invalid recipients in batch")
	ErrTooManyRecipients   = errors.New("too many recipients in one request")
	ErrInsufficientFunds   = errors.New("insufficient sms balance")
	ErrSenderIDRequired    = errors.New("sender id is required")
	ErrGatewayUnavailable  = errors.New("sms gateway unavailable")
	ErrGatewayRejectedSend = errors.New("sms gateway rejected the request")

	// Delivery report errors
	ErrReportMessageIDRequired = errors.New("delivery report message id is required")
	ErrReportStatusRequired    = errors.New("delivery report status is required")
	ErrReportStatusUnknown     = errors.New("delivery report status is unknown")
	ErrMessageNotFound         = errors.New("message not found")
	ErrReportAlreadyProcessed  = errors.New("delivery report already processed")

	// Product and sales errors
	ErrProductNotFound      = errors.New("product not found")
	ErrProductArchived      = errors.New("product is archived")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrSaleQuantityInvalid  = errors.New("sale quantity must be positive")
	ErrServiceNotFound      = errors.New("service not found")
	ErrExpenseNotFound      = errors.New("expense not found")
	ErrStoreNotFound        = errors.New("store not found")
	ErrBlogPostNotFound     = errors.New("blog post not found")
	ErrPremiumRequired      = errors.New("premium subscription required")

	// Payment errors
	ErrBundleNotFound           = errors.New("bundle not found")
	ErrPaymentNotFound          = errors.New("payment not found")
	ErrPaymentAlreadyProcessed  = errors.New("payment already processed")
	ErrPaymentSignatureInvalid  = errors.New("payment signature invalid")
	ErrPaymentProviderUnavailable = errors.New("payment provider unavailable")

	// Developer API errors
	ErrAPIKeyNotFound   = errors.New("api key not found")
	ErrAPIKeyRevoked    = errors.New("api key revoked")
	ErrRateLimitedKey   = errors.New("api key rate limit exceeded")

	// Filter errors
	ErrInvalidPage           = errors.New("page must be at least 1")
	ErrInvalidPageSize       = errors.New("page size must be between 1 and 100")
	ErrStartDateAfterEndDate = errors.New("start date cannot be after end date")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsUserNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}

func IsAccountInactive(err error) bool {
	return errors.Is(err, ErrAccountInactive)
}

func IsIncorrectPassword(err error) bool {
	return errors.Is(err, ErrIncorrectPassword)
}

func IsEmailAlreadyExists(err error) bool {
	return errors.Is(err, ErrEmailAlreadyExists)
}

func IsResetTokenInvalid(err error) bool {
	return errors.Is(err, ErrResetTokenInvalid)
}

func IsInsufficientFunds(err error) bool {
	return errors.Is(err, ErrInsufficientFunds)
}

func IsGatewayUnavailable(err error) bool {
	return errors.Is(err, ErrGatewayUnavailable)
}

func IsGatewayRejected(err error) bool {
	return errors.Is(err, ErrGatewayRejectedSend)
}

func IsNoValidRecipients(err error) bool {
	return errors.Is(err, ErrNoValidRecipients)
}

func IsInvalidRecipients(err error) bool {
	return errors.Is(err, ErrInvalidRecipients)
}

func IsMessageNotFound(err error) bool {
	return errors.Is(err, ErrMessageNotFound)
}

func IsReportInvalid(err error) bool {
	return errors.Is(err, ErrReportMessageIDRequired) ||
		errors.Is(err, ErrReportStatusRequired) ||
		errors.Is(err, ErrReportStatusUnknown)
}

func IsReportAlreadyProcessed(err error) bool {
	return errors.Is(err, ErrReportAlreadyProcessed)
}

func IsProductNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound)
}

func IsInsufficientStock(err error) bool {
	return errors.Is(err, ErrInsufficientStock)
}

func IsPaymentAlreadyProcessed(err error) bool {
	return errors.Is(err, ErrPaymentAlreadyProcessed)
}

func IsPremiumRequired(err error) bool {
	return errors.Is(err, ErrPremiumRequired)
}

func IsExpenseNotFound(err error) bool {
	return errors.Is(err, ErrExpenseNotFound)
}

func IsServiceNotFound(err error) bool {
	return errors.Is(err, ErrServiceNotFound)
}

func IsStoreNotFound(err error) bool {
	return errors.Is(err, ErrStoreNotFound)
}

func IsBlogPostNotFound(err error) bool {
	return errors.Is(err, ErrBlogPostNotFound)
}

func IsBundleNotFound(err error) bool {
	return errors.Is(err, ErrBundleNotFound)
}

func IsPaymentNotFound(err error) bool {
	return errors.Is(err, ErrPaymentNotFound)
}

func IsPaymentSignatureInvalid(err error) bool {
	return errors.Is(err, ErrPaymentSignatureInvalid)
}

func IsPaymentProviderUnavailable(err error) bool {
	return errors.Is(err, ErrPaymentProviderUnavailable)
}

func IsAPIKeyNotFound(err error) bool {
	return errors.Is(err, ErrAPIKeyNotFound)
}
