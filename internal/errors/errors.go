package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError represents a domain-specific error with a code and message
type DomainError struct {
	Code    string
	Message string
	Field   string // offending field for conflict/validation errors
	Err     error  // underlying error for wrapping
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is and errors.As
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches domain errors by code so wrapped copies still compare equal
// to the predefined values.
func (e *DomainError) Is(target error) bool {
	var domainErr *DomainError
	if errors.As(target, &domainErr) {
		return domainErr.Code == e.Code
	}
	return false
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewConflictError reports a uniqueness violation on the named field,
// e.g. "User name" or "Email address".
func NewConflictError(field string) *DomainError {
	return &DomainError{
		Code:    CodeConflict,
		Message: field + " already exists.",
		Field:   field,
	}
}

// WrapError wraps an existing error with domain error context
func WrapError(domainErr *DomainError, err error) *DomainError {
	return &DomainError{
		Code:    domainErr.Code,
		Message: domainErr.Message,
		Field:   domainErr.Field,
		Err:     err,
	}
}

// Error codes
const (
	CodeInvalidInput        = "INVALID_INPUT"
	CodeSamePassword        = "SAME_PASSWORD"
	CodeConflict            = "CONFLICT"
	CodeUserNotFound        = "USER_NOT_FOUND"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeInvalidOTP          = "INVALID_OTP"
	CodeInvalidToken        = "INVALID_TOKEN"
	CodeInvalidRefreshToken = "INVALID_REFRESH_TOKEN"
	CodeStaleRefreshToken   = "STALE_REFRESH_TOKEN"
	CodeInternal            = "INTERNAL_ERROR"
)

// Predefined domain errors
var (
	// Validation errors
	ErrMissingFields = NewDomainError(CodeInvalidInput, "All fields (userName, email, password, phoneNumber) are required.")
	ErrInvalidInput  = NewDomainError(CodeInvalidInput, "invalid input")
	ErrSamePassword  = NewDomainError(CodeSamePassword, "New password must differ from the current password.")

	// User errors
	ErrUserNotFound = NewDomainError(CodeUserNotFound, "User not found.")

	// Authentication errors
	ErrUnauthorized        = NewDomainError(CodeUnauthorized, "Unauthorized.")
	ErrInvalidCredentials  = NewDomainError(CodeInvalidCredentials, "Invalid password.")
	ErrInvalidOTP          = NewDomainError(CodeInvalidOTP, "Invalid OTP.")
	ErrInvalidToken        = NewDomainError(CodeInvalidToken, "Invalid or expired token.")
	ErrInvalidRefreshToken = NewDomainError(CodeInvalidRefreshToken, "Invalid refresh token.")
	ErrStaleRefreshToken   = NewDomainError(CodeStaleRefreshToken, "Refresh token is no longer active.")

	// System errors
	ErrInternal = NewDomainError(CodeInternal, "Internal server error.")
)

// IsDomainError checks if an error is a domain error
func IsDomainError(err error) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr)
}

// GetDomainError extracts the domain error from an error
func GetDomainError(err error) *DomainError {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// ToHTTPStatus maps domain errors to HTTP status codes
// This should only be used in the handler/presentation layer
func ToHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErrorToHTTPStatus(domainErr)
	}

	// Default to internal server error for unknown errors
	return http.StatusInternalServerError
}

func domainErrorToHTTPStatus(err *DomainError) int {
	switch err.Code {
	// 400 Bad Request
	case CodeInvalidInput, CodeSamePassword:
		return http.StatusBadRequest

	// 401 Unauthorized
	case CodeUnauthorized, CodeInvalidCredentials, CodeInvalidOTP,
		CodeInvalidToken, CodeInvalidRefreshToken, CodeStaleRefreshToken:
		return http.StatusUnauthorized

	// 404 Not Found
	case CodeUserNotFound:
		return http.StatusNotFound

	// 409 Conflict
	case CodeConflict:
		return http.StatusConflict

	// 500 Internal Server Error (default)
	default:
		return http.StatusInternalServerError
	}
}

// GetErrorMessage safely extracts error message
func GetErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}

	return err.Error()
}
