package services

import (
	"errors"
	"fmt"
)

// ErrorType represents the type/category of error
type ErrorType string

const (
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	ErrorTypeForbidden    ErrorType = "forbidden"
	ErrorTypeConflict     ErrorType = "conflict"
	ErrorTypeUnavailable  ErrorType = "unavailable"
	ErrorTypeInternal     ErrorType = "internal"
)

// DomainError represents a structured error with additional context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Details map[string]interface{}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// WithDetail adds a detail to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Details: make(map[string]interface{}),
	}
}

// Domain error variables

var (
	// Not Found Errors
	ErrPhotoNotFound = NewDomainError(ErrorTypeNotFound, "Photo not found", nil)
	ErrUserNotFound  = NewDomainError(ErrorTypeNotFound, "user not found", nil)

	// Validation Errors
	ErrInvalidInput   = NewDomainError(ErrorTypeValidation, "invalid input", nil)
	ErrInvalidPhotoID = NewDomainError(ErrorTypeValidation, "invalid photo id", nil)

	// Authentication Errors
	ErrUnauthorized   = NewDomainError(ErrorTypeUnauthorized, "unauthorized", nil)
	ErrInvalidToken   = NewDomainError(ErrorTypeUnauthorized, "invalid authentication token", nil)
	ErrTokenExpired   = NewDomainError(ErrorTypeUnauthorized, "authentication token expired", nil)
	ErrMissingSubject = NewDomainError(ErrorTypeUnauthorized, "token missing subject", nil)

	// Permission Errors
	ErrForbidden               = NewDomainError(ErrorTypeForbidden, "access forbidden", nil)
	ErrCannotUpdateOthersPhoto = NewDomainError(ErrorTypeForbidden, "You can only update your own photos", nil)
	ErrCannotDeleteOthersPhoto = NewDomainError(ErrorTypeForbidden, "You can only delete your own photos", nil)

	// Conflict Errors
	ErrDuplicatePexelsID = NewDomainError(ErrorTypeConflict, "Photo with this Pexels ID already exists", nil)
	ErrDuplicateEmail    = NewDomainError(ErrorTypeConflict, "email already exists", nil)

	// Unavailable Errors
	ErrKeysUnavailable = NewDomainError(ErrorTypeUnavailable, "key material unavailable", nil)

	// Internal Errors
	ErrInternal          = NewDomainError(ErrorTypeInternal, "internal server error", nil)
	ErrDatabaseError     = NewDomainError(ErrorTypeInternal, "database error", nil)
	ErrTransactionFailed = NewDomainError(ErrorTypeInternal, "transaction failed", nil)
)

// Error type checking helper functions

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeNotFound
	}
	return false
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeValidation
	}
	return false
}

// IsUnauthorizedError checks if an error is an unauthorized error
func IsUnauthorizedError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeUnauthorized
	}
	return false
}

// IsForbiddenError checks if an error is a forbidden error
func IsForbiddenError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeForbidden
	}
	return false
}

// IsConflictError checks if an error is a conflict error
func IsConflictError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeConflict
	}
	return false
}

// IsUnavailableError checks if an error is a key material availability error
func IsUnavailableError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeUnavailable
	}
	return false
}

// IsInternalError checks if an error is an internal error
func IsInternalError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeInternal
	}
	return false
}

// GetErrorType returns the ErrorType of a domain error, or empty string if not a domain error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ""
}

// GetErrorMessage returns the human-readable message of a domain error,
// falling back to err.Error() for plain errors
func GetErrorMessage(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return err.Error()
}

// GetErrorDetails returns the details map of a domain error, or nil if not a domain error
func GetErrorDetails(err error) map[string]interface{} {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Details
	}
	return nil
}

// WrapError wraps an error with additional context
func WrapError(errType ErrorType, message string, err error) error {
	return NewDomainError(errType, message, err)
}

// WrapInternal wraps an error as an internal error
func WrapInternal(message string, err error) error {
	return NewDomainError(ErrorTypeInternal, message, err)
}

// WrapUnavailable wraps an error as a key material availability error
func WrapUnavailable(message string, err error) error {
	return NewDomainError(ErrorTypeUnavailable, message, err)
}
