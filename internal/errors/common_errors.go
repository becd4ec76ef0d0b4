package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeSource     ErrorType = "SOURCE"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeRow        ErrorType = "ROW"
	ErrTypeExport     ErrorType = "EXPORT"
	ErrTypeConfig     ErrorType = "CONFIG"
	ErrTypeCancelled  ErrorType = "CANCELLED"
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

// Fatal reports whether the error must abort a run.
// Row errors are recovered by skipping the row; every other type is fatal.
func (e *AppError) Fatal() bool {
	return e.Type != ErrTypeRow
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

// NewSourceError creates an error for a source that cannot be read at all
func NewSourceError(message string, cause error) *AppError {
	return NewAppError(ErrTypeSource, message, cause)
}

// NewValidationError creates a structural validation error for an ingested table
func NewValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewRowError creates a recoverable error tied to one input row
func NewRowError(row int, message string, cause error) *AppError {
	return NewAppError(ErrTypeRow, message, cause).WithContext("row", row)
}

// NewExportError creates an error raised while persisting output files
func NewExportError(message string, cause error) *AppError {
	return NewAppError(ErrTypeExport, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// NewCancelledError wraps a context cancellation observed between stages
func NewCancelledError(stage string, cause error) *AppError {
	return NewAppError(ErrTypeCancelled, fmt.Sprintf("run cancelled before %s", stage), cause).
		WithContext("stage", stage)
}

// IsType reports whether err carries an AppError of the given type anywhere in its chain
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}
