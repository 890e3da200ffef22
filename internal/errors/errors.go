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
	Err     error // underlying error for wrapping
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

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WrapError wraps an existing error with domain error context
func WrapError(domainErr *DomainError, err error) *DomainError {
	return &DomainError{
		Code:    domainErr.Code,
		Message: domainErr.Message,
		Err:     err,
	}
}

// Predefined domain errors
var (
	// Signup / account errors
	ErrEmailExists  = NewDomainError("EMAIL_EXISTS", "Account already exists")
	ErrUserNotFound = NewDomainError("USER_NOT_FOUND", "user not found")

	// Login errors. Login deliberately distinguishes these three for UX;
	// every other authentication failure is reported as the generic
	// unauthorized message.
	ErrInvalidEmail      = NewDomainError("INVALID_EMAIL", "Invalid email")
	ErrEmailNotConfirmed = NewDomainError("EMAIL_NOT_CONFIRMED", "Email not confirmed")
	ErrInvalidPassword   = NewDomainError("INVALID_PASSWORD", "Invalid password")

	// Token errors
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "Unauthorized")
	ErrInvalidToken        = NewDomainError("INVALID_TOKEN", "invalid or expired token")
	ErrWrongScope          = NewDomainError("WRONG_SCOPE", "Invalid scope for token")
	ErrInvalidRefreshToken = NewDomainError("INVALID_REFRESH_TOKEN", "Invalid refresh token")
	ErrVerificationFailed  = NewDomainError("VERIFICATION_ERROR", "Verification error")

	// Contact errors
	ErrContactNotFound = NewDomainError("CONTACT_NOT_FOUND", "Contact not found")
	ErrPhoneExists     = NewDomainError("PHONE_EXISTS", "phone number already exists")

	// Validation errors
	ErrInvalidInput = NewDomainError("INVALID_INPUT", "invalid input")

	// System errors
	ErrInternal           = NewDomainError("INTERNAL_ERROR", "internal server error")
	ErrServiceUnavailable = NewDomainError("SERVICE_UNAVAILABLE", "service unavailable")
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

	return http.StatusInternalServerError
}

func domainErrorToHTTPStatus(err *DomainError) int {
	switch err.Code {
	// 400 Bad Request
	case "INVALID_INPUT", "VERIFICATION_ERROR":
		return http.StatusBadRequest

	// 401 Unauthorized
	case "UNAUTHORIZED", "INVALID_EMAIL", "EMAIL_NOT_CONFIRMED",
		"INVALID_PASSWORD", "INVALID_TOKEN", "WRONG_SCOPE",
		"INVALID_REFRESH_TOKEN":
		return http.StatusUnauthorized

	// 404 Not Found
	case "USER_NOT_FOUND", "CONTACT_NOT_FOUND":
		return http.StatusNotFound

	// 409 Conflict
	case "EMAIL_EXISTS", "PHONE_EXISTS":
		return http.StatusConflict

	// 503 Service Unavailable
	case "SERVICE_UNAVAILABLE":
		return http.StatusServiceUnavailable

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
