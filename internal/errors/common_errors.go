package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeConfig      ErrorType = "CONFIG"
	ErrTypeShape       ErrorType = "SHAPE_MISMATCH"
	ErrTypeUnsupported ErrorType = "UNSUPPORTED_TYPE"
	ErrTypeParsing     ErrorType = "PARSING"
	ErrTypeStorage     ErrorType = "STORAGE"
	ErrTypeValidation  ErrorType = "VALIDATION"
	ErrTypeNotFound    ErrorType = "NOT_FOUND"
	ErrTypeNetwork     ErrorType = "NETWORK"
	ErrTypeInternal    ErrorType = "INTERNAL"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// Helper functions for common error types

// NewConfigError reports an unrecognized column type or a malformed
// sentinel-policy spec.
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// NewShapeError reports subset names absent from a table or a threshold
// outside the valid axis range.
func NewShapeError(message string) *AppError {
	return NewAppError(ErrTypeShape, message, nil)
}

// NewUnsupportedTypeError reports a fill statistic requested for a column
// type that does not define it.
func NewUnsupportedTypeError(message string) *AppError {
	return NewAppError(ErrTypeUnsupported, message, nil)
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// NewNetworkError creates a network-related error
func NewNetworkError(message string, cause error) *AppError {
	return NewAppError(ErrTypeNetwork, message, cause)
}

// NewInternalAppError creates an internal error
func NewInternalAppError(message string, cause error) *AppError {
	return NewAppError(ErrTypeInternal, message, cause)
}

// IsType reports whether err is an AppError of the given type anywhere in
// its chain.
func IsType(err error, t ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == t
	}
	return false
}

// IsConfig reports a configuration error.
func IsConfig(err error) bool { return IsType(err, ErrTypeConfig) }

// IsShape reports a shape mismatch error.
func IsShape(err error) bool { return IsType(err, ErrTypeShape) }

// IsUnsupported reports an unsupported type error.
func IsUnsupported(err error) bool { return IsType(err, ErrTypeUnsupported) }

// IsNotFound reports a not found error.
func IsNotFound(err error) bool { return IsType(err, ErrTypeNotFound) }
