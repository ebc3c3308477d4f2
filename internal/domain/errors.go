package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// APIError represents a standardized error response
type APIError struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error codes for different failure scenarios
const (
	ErrInvalidInput     = "INVALID_INPUT"
	ErrMissingInput     = "MISSING_INPUT"
	ErrValidation       = "VALIDATION_ERROR"
	ErrStorage          = "STORAGE_ERROR"
	ErrRateLimit        = "RATE_LIMIT_EXCEEDED"
	ErrRequestTimeout   = "REQUEST_TIMEOUT"
	ErrNotFoundCode     = "NOT_FOUND"
	ErrServiceDisabled  = "SERVICE_DISABLED"
	ErrInternalServer   = "INTERNAL_SERVER_ERROR"
	ErrPredictionFailed = "PREDICTION_FAILED"
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

// MissingFieldsError lists every required field absent from a request.
type MissingFieldsError struct {
	Fields []string `json:"fields"`
}

func (e *MissingFieldsError) Error() string {
	fields := append([]string(nil), e.Fields...)
	sort.Strings(fields)
	if len(fields) == 1 {
		return fmt.Sprintf("missing required field: %s", fields[0])
	}
	return fmt.Sprintf("missing required fields: %s", strings.Join(fields, ", "))
}

// NewAPIError creates a new APIError with timestamp
func NewAPIError(code, message, details, requestID string) *APIError {
	return &APIError{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
		RequestID: requestID,
	}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// NewMissingFieldsError returns nil when fields is empty.
func NewMissingFieldsError(fields []string) error {
	if len(fields) == 0 {
		return nil
	}
	return &MissingFieldsError{Fields: fields}
}
