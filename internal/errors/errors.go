// Package errors provides custom error types for the finsight API.
// All service-layer errors should use AppError so that responses stay
// consistent and never leak internal details to clients.
package errors

import (
	"errors"
	"net/http"

	"finsight/internal/analytics"
)

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// FromValidation converts an analytics validation failure into an
// ErrInvalidTransaction carrying the offending transaction id in its message.
// Other errors are returned unchanged.
func FromValidation(err error) error {
	var verr *analytics.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	appErr := WithMessage(ErrInvalidTransaction, verr.Error())
	appErr.Internal = verr
	return appErr
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
)

// Account errors.
var (
	ErrAccountNotFound      = &AppError{Code: "ACCOUNT_NOT_FOUND", Message: "Account not found", StatusCode: http.StatusNotFound}
	ErrAccountAlreadyLinked = &AppError{Code: "ACCOUNT_ALREADY_LINKED", Message: "This provider account is already linked", StatusCode: http.StatusConflict}
)

// Transaction errors.
var (
	ErrTransactionNotFound = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrInvalidTransaction  = &AppError{Code: "INVALID_TRANSACTION", Message: "Transaction batch contains a malformed transaction", StatusCode: http.StatusUnprocessableEntity}
)

// Analytics errors.
var (
	ErrInvalidDateRange    = &AppError{Code: "INVALID_DATE_RANGE", Message: "The from date must not be after the to date", StatusCode: http.StatusBadRequest}
	ErrProviderUnavailable = &AppError{Code: "PROVIDER_UNAVAILABLE", Message: "The banking provider could not be reached", StatusCode: http.StatusBadGateway}
)
