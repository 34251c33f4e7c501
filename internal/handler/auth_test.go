package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgo/jobtrack/internal/middleware"
	"github.com/forgo/jobtrack/internal/model"
	"github.com/forgo/jobtrack/internal/service"
)

// ============================================================================
// Mock AuthService
// ============================================================================

type mockAuthService struct {
	registerFunc   func(ctx context.Context, req service.RegisterRequest) (*service.AuthResult, error)
	loginFunc      func(ctx context.Context, req service.LoginRequest) (*service.AuthResult, error)
	updateUserFunc func(ctx context.Context, userID string, req service.UpdateUserRequest) (*service.AuthResult, error)
}

func (m *mockAuthService) Register(ctx context.Context, req service.RegisterRequest) (*service.AuthResult, error) {
	if m.registerFunc != nil {
		return m.registerFunc(ctx, req)
	}
	return nil, nil
}

func (m *mockAuthService) Login(ctx context.Context, req service.LoginRequest) (*service.AuthResult, error) {
	if m.loginFunc != nil {
		return m.loginFunc(ctx, req)
	}
	return nil, nil
}

func (m *mockAuthService) UpdateUser(ctx context.Context, userID string, req service.UpdateUserRequest) (*service.AuthResult, error) {
	if m.updateUserFunc != nil {
		return m.updateUserFunc(ctx, userID, req)
	}
	return nil, nil
}

// ============================================================================
// Test Helpers
// ============================================================================

func testAuthResult() *service.AuthResult {
	return &service.AuthResult{
		User: model.UserSummary{
			ID:       "user:123",
			Name:     "ann",
			Email:    "ann@example.com",
			LastName: model.DefaultLastName,
			Location: model.DefaultLocation,
		},
		Token: "signed.jwt.token",
	}
}

func makeJSONRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withUserContext(req *http.Request, userID string) *http.Request {
	ctx := middleware.WithUser(req.Context(), &model.TokenClaims{UserID: userID, Name: "ann"})
	return req.WithContext(ctx)
}

func parseErrorResponse(t *testing.T, rr *httptest.ResponseRecorder) model.APIError {
	t.Helper()
	var apiErr model.APIError
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&apiErr))
	return apiErr
}

func parseAuthResponse(t *testing.T, rr *httptest.ResponseRecorder) service.AuthResult {
	t.Helper()
	var resp struct {
		Data service.AuthResult `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return resp.Data
}

// ============================================================================
// Register Tests
// ============================================================================

func TestRegister_Success(t *testing.T) {
	t.Parallel()
	var got service.RegisterRequest
	h := NewAuthHandler(&mockAuthService{
		registerFunc: func(_ context.Context, req service.RegisterRequest) (*service.AuthResult, error) {
			got = req
			return testAuthResult(), nil
		},
	})

	rr := httptest.NewRecorder()
	h.Register(rr, makeJSONRequest(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"name": "ann", "email": "ann@example.com", "password": "secret1",
	}))

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, service.RegisterRequest{Name: "ann", Email: "ann@example.com", Password: "secret1"}, got)

	resp := parseAuthResponse(t, rr)
	assert.Equal(t, "signed.jwt.token", resp.Token)
	assert.Equal(t, "user:123", resp.User.ID)
	assert.Equal(t, "my city", resp.User.Location)
}

func TestRegister_ResponseNeverCarriesPassword(t *testing.T) {
	t.Parallel()
	h := NewAuthHandler(&mockAuthService{
		registerFunc: func(context.Context, service.RegisterRequest) (*service.AuthResult, error) {
			return testAuthResult(), nil
		},
	})

	rr := httptest.NewRecorder()
	h.Register(rr, makeJSONRequest(t, http.MethodPost, "/", map[string]string{
		"name": "ann", "email": "ann@example.com", "password": "secret1",
	}))

	assert.NotContains(t, strings.ToLower(rr.Body.String()), "password")
	assert.NotContains(t, rr.Body.String(), "secret1")
}

func TestRegister_ValidationError(t *testing.T) {
	t.Parallel()
	h := NewAuthHandler(&mockAuthService{
		registerFunc: func(context.Context, service.RegisterRequest) (*service.AuthResult, error) {
			return nil, service.NewValidationError([]model.FieldError{
				{Field: "name", Message: "name must be between 3 and 20 characters"},
				{Field: "password", Message: "password must be at least 6 characters"},
			})
		},
	})

	rr := httptest.NewRecorder()
	h.Register(rr, makeJSONRequest(t, http.MethodPost, "/", map[string]string{"name": "a"}))

	require.Equal(t, http.StatusBadRequest, rr.Code)
	apiErr := parseErrorResponse(t, rr)
	assert.Equal(t, model.ErrCodeValidation, apiErr.Code)
	require.Len(t, apiErr.Errors, 2)
	assert.Equal(t, "name", apiErr.Errors[0].Field)
	assert.Equal(t, "password", apiErr.Errors[1].Field)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()
	h := NewAuthHandler(&mockAuthService{
		registerFunc: func(context.Context, service.RegisterRequest) (*service.AuthResult, error) {
			return nil, service.ErrEmailAlreadyExists
		},
	})

	rr := httptest.NewRecorder()
	h.Register(rr, makeJSONRequest(t, http.MethodPost, "/", map[string]string{
		"name": "ann", "email": "ann@example.com", "password": "secret1",
	}))

	require.Equal(t, http.StatusBadRequest, rr.Code)
	apiErr := parseErrorResponse(t, rr)
	assert.Equal(t, "email already in use", apiErr.Message)
	assert.Equal(t, model.ErrCodeAlreadyExists, apiErr.Code)
}

func TestRegister_MalformedBody(t *testing.T) {
	t.Parallel()
	called := false
	h := NewAuthHandler(&mockAuthService{
		registerFunc: func(context.Context, service.RegisterRequest) (*service.AuthResult, error) {
			called = true
			return nil, nil
		},
	})

	for _, body := range []string{`{"name":`, `{"name":"a"}{"name":"b"}`, `[]`} {
		rr := httptest.NewRecorder()
		h.Register(rr, makeJSONRequest(t, http.MethodPost, "/", body))
		assert.Equal(t, http.StatusBadRequest, rr.Code, body)
	}
	assert.False(t, called)
}

// ============================================================================
// Login Tests
// ============================================================================

func TestLogin_Success(t *testing.T) {
	t.Parallel()
	h := NewAuthHandler(&mockAuthService{
		loginFunc: func(_ context.Context, req service.LoginRequest) (*service.AuthResult, error) {
			assert.Equal(t, "ann@example.com", req.Email)
			return testAuthResult(), nil
		},
	})

	rr := httptest.NewRecorder()
	h.Login(rr, makeJSONRequest(t, http.MethodPost, "/", map[string]string{
		"email": "ann@example.com", "password": "secret1",
	}))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "signed.jwt.token", parseAuthResponse(t, rr).Token)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	t.Parallel()
	h := NewAuthHandler(&mockAuthService{
		loginFunc: func(context.Context, service.LoginRequest) (*service.AuthResult, error) {
			return nil, service.ErrInvalidCredentials
		},
	})

	rr := httptest.NewRecorder()
	h.Login(rr, makeJSONRequest(t, http.MethodPost, "/", map[string]string{
		"email": "ann@example.com", "password": "wrong",
	}))

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "invalid credentials", parseErrorResponse(t, rr).Message)
}

// ============================================================================
// UpdateUser Tests
// ============================================================================

func TestUpdateUser_UsesCallerFromContext(t *testing.T) {
	t.Parallel()
	var gotID string
	var gotReq service.UpdateUserRequest
	h := NewAuthHandler(&mockAuthService{
		updateUserFunc: func(_ context.Context, userID string, req service.UpdateUserRequest) (*service.AuthResult, error) {
			gotID, gotReq = userID, req
			return testAuthResult(), nil
		},
	})

	req := withUserContext(makeJSONRequest(t, http.MethodPatch, "/api/v1/auth/updateUser", map[string]string{
		"name": "ann", "email": "ann@example.com", "last_name": "smith", "location": "oslo",
	}), "user:123")
	rr := httptest.NewRecorder()
	h.UpdateUser(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "user:123", gotID)
	assert.Equal(t, "smith", gotReq.LastName)
	assert.Equal(t, "oslo", gotReq.Location)
	assert.Nil(t, gotReq.Password)
}

func TestUpdateUser_Unauthenticated(t *testing.T) {
	t.Parallel()
	h := NewAuthHandler(&mockAuthService{})

	rr := httptest.NewRecorder()
	h.UpdateUser(rr, makeJSONRequest(t, http.MethodPatch, "/", map[string]string{"name": "ann"}))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestUpdateUser_UnexpectedErrorIsGeneric(t *testing.T) {
	t.Parallel()
	h := NewAuthHandler(&mockAuthService{
		updateUserFunc: func(context.Context, string, service.UpdateUserRequest) (*service.AuthResult, error) {
			return nil, assert.AnError
		},
	})

	rr := httptest.NewRecorder()
	h.UpdateUser(rr, withUserContext(makeJSONRequest(t, http.MethodPatch, "/", map[string]string{"name": "ann"}), "user:1"))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), assert.AnError.Error())
}
