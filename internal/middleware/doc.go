// Package middleware provides HTTP middleware for the jobtrack API.
//
// # Available Middleware
//
//   - RequestID, Logger, Recovery: request tracing and panic safety
//   - SecureHeaders, CORS, Compress: response hardening and encoding
//   - Auth: bearer token validation, attaches the caller to the context
//   - DemoReadOnly: blocks writes from the shared demo account
//   - RateLimit: fixed-window limiting per client address
//   - Idempotency: replays cached responses for repeated Idempotency-Key
//
// Middleware compose with Chain:
//
//	handler := middleware.Chain(mux,
//		middleware.RequestID,
//		middleware.Logger,
//		middleware.Recovery,
//	)
//
// # Context Values
//
//   - GetUserID(ctx): authenticated user record id
//   - GetUserName(ctx): authenticated user display name
//   - GetRequestID(ctx): unique request identifier
package middleware
