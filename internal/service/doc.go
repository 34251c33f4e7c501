// Package service implements the business logic of the jobtrack API.
//
// Services sit between the HTTP handlers and the repositories. They validate
// input, enforce ownership and translate storage results into domain errors.
//
// # Services
//
//   - AuthService: registration, login, profile updates, token checks
//   - TokenService: issues and verifies session tokens
//   - JobService: owner-scoped job CRUD, listing and statistics
//
// # Errors
//
// Every returned error is one of, or wraps one of, ErrValidation,
// ErrAuthentication, ErrNotFound or ErrDuplicate. Validation failures are
// *ValidationError values listing each offending field:
//
//	var verr *service.ValidationError
//	if errors.As(err, &verr) {
//	    for _, f := range verr.Fields { ... }
//	}
//
// Any other error is an unexpected storage or signing failure.
//
// # Repositories
//
// Storage is reached through the UserRepository and JobRepository
// interfaces declared here, so tests can substitute in-memory fakes.
package service
