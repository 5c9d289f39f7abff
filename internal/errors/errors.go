// Package errors defines the application error taxonomy shared by the
// pipeline, the ingestion clients, and both command-line entry points.
package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeConfig     ErrorType = "CONFIG"
	ErrTypeSchema     ErrorType = "SCHEMA"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
	ErrTypeEmptyInput ErrorType = "EMPTY_INPUT"
	ErrTypeNetwork    ErrorType = "NETWORK"
	ErrTypeEmail      ErrorType = "EMAIL"
	ErrTypeParsing    ErrorType = "PARSING"
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

// Helper constructors for the common error types

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// NewSchemaError creates a schema validation error for missing columns
func NewSchemaError(message string, cause error) *AppError {
	return NewAppError(ErrTypeSchema, message, cause)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(message string) *AppError {
	return NewAppError(ErrTypeNotFound, message, nil)
}

// NewEmptyInputError creates an empty input error
func NewEmptyInputError(message string) *AppError {
	return NewAppError(ErrTypeEmptyInput, message, nil)
}

// NewNetworkError creates a network-related error
func NewNetworkError(message string, cause error) *AppError {
	return NewAppError(ErrTypeNetwork, message, cause)
}

// NewEmailError creates an email delivery error
func NewEmailError(message string, cause error) *AppError {
	return NewAppError(ErrTypeEmail, message, cause)
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// IsType reports whether err is (or wraps) an AppError of the given type.
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}

// IsNotFound reports whether err is a NOT_FOUND error. The batch mailer uses
// this to downgrade a missing roster member to a skip instead of a failure.
func IsNotFound(err error) bool {
	return IsType(err, ErrTypeNotFound)
}

// IsEmptyInput reports whether err is an EMPTY_INPUT error.
func IsEmptyInput(err error) bool {
	return IsType(err, ErrTypeEmptyInput)
}

// IsSchema reports whether err is a SCHEMA error.
func IsSchema(err error) bool {
	return IsType(err, ErrTypeSchema)
}

// IsConfig reports whether err is a CONFIG error.
func IsConfig(err error) bool {
	return IsType(err, ErrTypeConfig)
}
