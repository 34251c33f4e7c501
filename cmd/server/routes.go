package main

import (
	"net/http"

	"github.com/forgo/jobtrack/internal/handler"
	"github.com/forgo/jobtrack/internal/middleware"
)

// routes holds everything the HTTP surface is assembled from
type routes struct {
	authHandler   *handler.AuthHandler
	jobHandler    *handler.JobHandler
	healthHandler *handler.HealthHandler

	tokens      middleware.TokenValidator
	demo        middleware.DemoChecker
	limiter     *middleware.RateLimiter
	idempotency *middleware.IdempotencyStore

	allowedOrigins []string
	trustProxy     bool
	hsts           bool
}

// handler builds the mux and wraps it in the global middleware chain
func (rt *routes) handler() http.Handler {
	authMiddleware := middleware.Auth(rt.tokens)
	demoGuard := middleware.DemoReadOnly(rt.demo)
	rateLimit := middleware.RateLimit(rt.limiter, rt.trustProxy)
	idempotent := middleware.Idempotency(rt.idempotency)

	// read requires a caller, write additionally excludes the demo account
	read := func(h http.HandlerFunc) http.Handler {
		return authMiddleware(h)
	}
	write := func(h http.HandlerFunc) http.Handler {
		return authMiddleware(demoGuard(h))
	}

	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("GET /health", rt.healthHandler.Health)

	// Auth endpoints (public, rate limited)
	mux.Handle("POST /api/v1/auth/register", rateLimit(http.HandlerFunc(rt.authHandler.Register)))
	mux.Handle("POST /api/v1/auth/login", rateLimit(http.HandlerFunc(rt.authHandler.Login)))

	// Auth endpoints (protected)
	mux.Handle("PATCH /api/v1/auth/updateUser", write(rt.authHandler.UpdateUser))

	// Job endpoints
	mux.Handle("GET /api/v1/jobs", read(rt.jobHandler.ListJobs))
	mux.Handle("POST /api/v1/jobs", authMiddleware(demoGuard(idempotent(http.HandlerFunc(rt.jobHandler.CreateJob)))))
	mux.Handle("GET /api/v1/jobs/stats", read(rt.jobHandler.ShowStats))
	mux.Handle("GET /api/v1/jobs/{id}", read(rt.jobHandler.GetJob))
	mux.Handle("PATCH /api/v1/jobs/{id}", write(rt.jobHandler.UpdateJob))
	mux.Handle("DELETE /api/v1/jobs/{id}", write(rt.jobHandler.DeleteJob))

	// Everything else
	mux.HandleFunc("/", handler.NotFound)

	return middleware.Chain(
		mux,
		middleware.RequestID,
		middleware.Logger,
		middleware.Recovery,
		middleware.SecureHeaders(rt.hsts),
		middleware.CORS(rt.allowedOrigins),
		middleware.Compress,
	)
}
