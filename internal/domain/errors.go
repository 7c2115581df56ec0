package domain

import (
	"errors"
	"fmt"
	"time"
)

// AppError represents a standardized error response
type AppError struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Warnings  []string  `json:"warnings,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`

	cause error
}

// Error implements the error interface
func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any
func (e *AppError) Unwrap() error {
	return e.cause
}

// Error codes for different failure scenarios
const (
	ErrInvalidInput   = "INVALID_INPUT"
	ErrValidation     = "VALIDATION_FAILURE"
	ErrNoDataEntered  = "NO_DATA_ENTERED"
	ErrModelNotFound  = "MODEL_NOT_FOUND"
	ErrModelLoad      = "MODEL_LOAD_ERROR"
	ErrPrediction     = "PREDICTION_ERROR"
	ErrRateLimit      = "RATE_LIMIT_EXCEEDED"
	ErrInternalServer = "INTERNAL_SERVER_ERROR"
)

// User-facing messages shown by the form when the prediction gate rejects a request.
const (
	MessageNoDataEntered = "Please enter patient data to get a prediction."
	MessageFixWarnings   = "Please fix the warnings above to get a valid prediction."
)

// ValidationError represents input validation errors
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewAppError creates a new AppError with timestamp
func NewAppError(code, message, details string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

// WrapAppError creates a new AppError carrying cause as its details and unwrap target
func WrapAppError(code, message string, cause error) *AppError {
	e := NewAppError(code, message, "")
	if cause != nil {
		e.Details = cause.Error()
		e.cause = cause
	}
	return e
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// NewModelNotFoundError reports a classifier artifact missing from storage.
func NewModelNotFoundError(path string, cause error) *AppError {
	return WrapAppError(ErrModelNotFound,
		fmt.Sprintf("The model file '%s' was not found. Please ensure it is in the 'models' directory.", path),
		cause)
}

// NewModelLoadError reports an artifact that exists but could not be deserialized.
func NewModelLoadError(path string, cause error) *AppError {
	return WrapAppError(ErrModelLoad,
		fmt.Sprintf("An error occurred while loading the model '%s'.", path),
		cause)
}

// NewNoDataEnteredError is returned when every numeric field still holds its default.
func NewNoDataEnteredError() *AppError {
	return NewAppError(ErrNoDataEntered, MessageNoDataEntered, "")
}

// NewValidationFailureError carries the per-field warnings that blocked a prediction.
func NewValidationFailureError(warnings []string) *AppError {
	e := NewAppError(ErrValidation, MessageFixWarnings, "")
	e.Warnings = warnings
	return e
}

// NewPredictionError wraps a failure raised while scoring a feature vector.
func NewPredictionError(cause error) *AppError {
	return WrapAppError(ErrPrediction, "The prediction could not be computed.", cause)
}

// ErrorCode returns the AppError code found in err's chain, or "" if there is none.
func ErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// IsCode reports whether err's chain contains an AppError with the given code.
func IsCode(err error, code string) bool {
	return err != nil && ErrorCode(err) == code
}
