// Package handler provides the HTTP handlers of the jobtrack API.
//
// Handlers depend on small interfaces (AuthService, JobService, Pinger)
// rather than concrete services, decode JSON bodies with DecodeJSON and
// translate service errors with MapServiceError.
//
// # Response Format
//
//   - WriteData: {"data": ...} with optional "_links"
//   - WriteCollection: {"data": [...], "pagination": {...}}
//   - WriteError: {"message": ..., "code": ..., "errors": [...]}
//
// # Authentication
//
// Job and profile routes run behind middleware.Auth; handlers read the
// caller with middleware.GetUserID.
package handler
