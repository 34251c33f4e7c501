package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/forgo/jobtrack/internal/model"
)

// Centralized service layer errors.
// Every error a service returns either is, or wraps, one of the four kinds
// below so handlers can map it to a status with errors.Is. Anything else is
// an unexpected failure.

// ===== Error Kinds =====
var (
	ErrValidation     = errors.New("validation failed")
	ErrAuthentication = errors.New("authentication failed")
	ErrNotFound       = errors.New("not found")
	ErrDuplicate      = errors.New("duplicate")
)

// ===== Authentication Errors =====
var (
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrAuthentication)
	ErrInvalidToken       = fmt.Errorf("%w: authentication invalid", ErrAuthentication)
	ErrEmailAlreadyExists = fmt.Errorf("%w: email already in use", ErrDuplicate)
	ErrUserNotFound       = fmt.Errorf("%w: user", ErrNotFound)
)

// ===== Job Errors =====
var (
	ErrJobNotFound = fmt.Errorf("%w: job", ErrNotFound)
)

// ValidationError lists every field that failed validation
type ValidationError struct {
	Fields []model.FieldError
}

// NewValidationError wraps field errors, or returns nil when there are none
func NewValidationError(fields []model.FieldError) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// Error joins the field messages
func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Unwrap makes errors.Is(err, ErrValidation) true
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func fieldError(field, message string) error {
	return &ValidationError{Fields: []model.FieldError{{Field: field, Message: message}}}
}
