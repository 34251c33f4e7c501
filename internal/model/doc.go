// Package model defines domain entities and data structures for the jobtrack API.
//
// The model package contains struct definitions for domain objects, request
// types with their Validate methods, and the API error body. Models are used
// across all layers of the application.
//
// # Domain Entities
//
//   - User: account with bcrypt credentials, never serialized with its hash
//   - Job: a job application owned by exactly one user (CreatedBy)
//
// # Validation
//
// Request types expose Validate() []FieldError, returning every violation
// rather than stopping at the first:
//
//	if errs := req.Validate(); len(errs) > 0 {
//	    return &service.ValidationError{Fields: errs}
//	}
//
// # JSON Serialization
//
// Field names are snake_case. Password hashes carry json:"-".
package model
