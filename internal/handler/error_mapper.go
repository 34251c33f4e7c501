package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/forgo/jobtrack/internal/middleware"
	"github.com/forgo/jobtrack/internal/model"
	"github.com/forgo/jobtrack/internal/service"
)

// MapServiceError converts a service error to an API error response.
// Every service error is one of four kinds; anything else is unexpected
// and reported with a generic message.
func MapServiceError(err error) *model.APIError {
	if err == nil {
		return nil
	}

	var verr *service.ValidationError

	switch {
	// ===== Validation → 400 =====
	case errors.As(err, &verr):
		return model.NewValidationError(verr.Fields)
	case errors.Is(err, service.ErrValidation):
		return model.NewBadRequestError(err.Error())

	// ===== Authentication → 401 =====
	case errors.Is(err, service.ErrInvalidCredentials):
		return model.NewUnauthorizedError("invalid credentials")
	case errors.Is(err, service.ErrAuthentication):
		return model.NewUnauthorizedError("authentication invalid")

	// ===== Not Found → 404 =====
	case errors.Is(err, service.ErrJobNotFound):
		return model.NewNotFoundError("job")
	case errors.Is(err, service.ErrUserNotFound):
		return model.NewNotFoundError("user")
	case errors.Is(err, service.ErrNotFound):
		return model.NewNotFoundError("resource")

	// ===== Duplicate → 400 =====
	case errors.Is(err, service.ErrEmailAlreadyExists):
		return model.NewDuplicateError("email already in use")
	case errors.Is(err, service.ErrDuplicate):
		return model.NewDuplicateError("duplicate value")

	// ===== Default → 500 =====
	default:
		return model.NewInternalError("")
	}
}

// writeServiceError maps err and writes it, logging unexpected failures
// with the request id. Store details never reach the client.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	apiErr := MapServiceError(err)
	if apiErr.Status >= http.StatusInternalServerError {
		slog.Error("request failed",
			"operation", operation,
			"request_id", middleware.GetRequestID(r.Context()),
			"user_id", middleware.GetUserID(r.Context()),
			"error", err,
		)
	}
	WriteError(w, apiErr)
}
