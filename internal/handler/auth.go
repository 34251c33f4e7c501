package handler

import (
	"context"
	"net/http"

	"github.com/forgo/jobtrack/internal/middleware"
	"github.com/forgo/jobtrack/internal/model"
	"github.com/forgo/jobtrack/internal/service"
)

// AuthService is the subset of service.AuthService the handlers use
type AuthService interface {
	Register(ctx context.Context, req service.RegisterRequest) (*service.AuthResult, error)
	Login(ctx context.Context, req service.LoginRequest) (*service.AuthResult, error)
	UpdateUser(ctx context.Context, userID string, req service.UpdateUserRequest) (*service.AuthResult, error)
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.authService.Register(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err, "register")
		return
	}

	WriteData(w, http.StatusCreated, result, nil)
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.authService.Login(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err, "login")
		return
	}

	WriteData(w, http.StatusOK, result, nil)
}

// UpdateUser handles PATCH /api/v1/auth/updateUser
func (h *AuthHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication invalid"))
		return
	}

	var req service.UpdateUserRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.authService.UpdateUser(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, r, err, "update user")
		return
	}

	WriteData(w, http.StatusOK, result, nil)
}
