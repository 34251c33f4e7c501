package model

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ErrorCode represents API error codes
type ErrorCode int

const (
	// Authentication errors (1xxx)
	ErrCodeUnauthorized ErrorCode = 1001

	// Resource errors (3xxx)
	ErrCodeNotFound      ErrorCode = 3001
	ErrCodeAlreadyExists ErrorCode = 3002
	ErrCodeRouteNotFound ErrorCode = 3003

	// Validation errors (4xxx)
	ErrCodeValidation   ErrorCode = 4001
	ErrCodeInvalidInput ErrorCode = 4002
	ErrCodeReadOnly     ErrorCode = 4003
	ErrCodeRateLimited  ErrorCode = 4004

	// Internal errors (5xxx)
	ErrCodeInternal ErrorCode = 5001
)

// RateLimitMessage is the fixed body of a rate-limited response
const RateLimitMessage = "Too many requests from this IP, please try again after 15 minutes"

// APIError is the single error body shape of the API: {message, code, errors}
type APIError struct {
	Status  int          `json:"-"`
	Message string       `json:"message"`
	Code    ErrorCode    `json:"code,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// FieldError represents a validation error on a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("[%d] %s", e.Status, e.Message)
}

// WriteJSON writes the error as a JSON response
func (e *APIError) WriteJSON(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Status)
	_ = json.NewEncoder(w).Encode(e)
}

// Common error constructors

func NewUnauthorizedError(message string) *APIError {
	return &APIError{
		Status:  http.StatusUnauthorized,
		Message: message,
		Code:    ErrCodeUnauthorized,
	}
}

func NewNotFoundError(resource string) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Code:    ErrCodeNotFound,
	}
}

func NewRouteNotFoundError() *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Message: "route does not exist",
		Code:    ErrCodeRouteNotFound,
	}
}

func NewValidationError(errors []FieldError) *APIError {
	// Build detailed message from field errors
	message := "one or more fields failed validation"
	if len(errors) > 0 {
		message = errors[0].Message
		if len(errors) > 1 {
			message = fmt.Sprintf("%s (and %d more errors)", message, len(errors)-1)
		}
	}
	return &APIError{
		Status:  http.StatusBadRequest,
		Message: message,
		Code:    ErrCodeValidation,
		Errors:  errors,
	}
}

// NewDuplicateError reports a unique-constraint violation. It is a 400, not a
// 409, so clients treat it like any other bad input.
func NewDuplicateError(message string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Message: message,
		Code:    ErrCodeAlreadyExists,
	}
}

func NewBadRequestError(message string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Message: message,
		Code:    ErrCodeInvalidInput,
	}
}

func NewReadOnlyError() *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Message: "demo user is read only",
		Code:    ErrCodeReadOnly,
	}
}

func NewInternalError(message string) *APIError {
	if message == "" {
		message = "something went wrong, try again later"
	}
	return &APIError{
		Status:  http.StatusInternalServerError,
		Message: message,
		Code:    ErrCodeInternal,
	}
}

func NewRateLimitError() *APIError {
	return &APIError{
		Status:  http.StatusTooManyRequests,
		Message: RateLimitMessage,
		Code:    ErrCodeRateLimited,
	}
}
