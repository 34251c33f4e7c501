package helpers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/forgo/jobtrack/internal/database"
	"github.com/forgo/jobtrack/internal/model"
	"github.com/forgo/jobtrack/pkg/jwt"
)

// ============================================================================
// JWT Helpers
// ============================================================================

// TestJWTSecret signs every token a JWTHelper issues
const TestJWTSecret = "integration-test-secret-0123456789abcdef"

// TestJWTIssuer is the issuer of every token a JWTHelper issues
const TestJWTIssuer = "jobtrack-test"

// JWTHelper issues session tokens for tests
type JWTHelper struct {
	Service *jwt.Service
	expired *jwt.Service
}

// NewJWTHelper creates a helper backed by the test secret. Pass Service to
// the code under test so the tokens validate.
func NewJWTHelper(t *testing.T) *JWTHelper {
	t.Helper()
	return &JWTHelper{
		Service: NewTestJWTService(t),
		expired: newJWTService(t, time.Nanosecond),
	}
}

// GenerateToken creates a valid token for user
func (h *JWTHelper) GenerateToken(user *model.User) string {
	token, err := h.Service.Sign(user.ID, user.Name)
	if err != nil {
		panic("helpers: failed to sign token: " + err.Error())
	}
	return token
}

// GenerateExpiredToken creates a token that is already past its expiry
func (h *JWTHelper) GenerateExpiredToken(user *model.User) string {
	token, err := h.expired.Sign(user.ID, user.Name)
	if err != nil {
		panic("helpers: failed to sign token: " + err.Error())
	}
	time.Sleep(time.Millisecond)
	return token
}

// NewTestJWTService creates a JWT service with the test secret and a one hour
// lifetime
func NewTestJWTService(t *testing.T) *jwt.Service {
	t.Helper()
	return newJWTService(t, time.Hour)
}

func newJWTService(t *testing.T, lifetime time.Duration) *jwt.Service {
	t.Helper()
	svc, err := jwt.NewService(jwt.Config{
		Secret:     TestJWTSecret,
		Issuer:     TestJWTIssuer,
		Expiration: lifetime,
	})
	if err != nil {
		t.Fatalf("helpers: failed to create JWT service: %v", err)
	}
	return svc
}

// ============================================================================
// HTTP Request Helpers
// ============================================================================

// RequestBuilder helps construct HTTP requests for testing
type RequestBuilder struct {
	t       *testing.T
	method  string
	path    string
	body    interface{}
	headers map[string]string
	jwt     *JWTHelper
	user    *model.User
}

// NewRequest creates a new request builder
func NewRequest(t *testing.T, method, path string) *RequestBuilder {
	t.Helper()
	return &RequestBuilder{
		t:       t,
		method:  method,
		path:    path,
		headers: make(map[string]string),
	}
}

// WithBody sets the request body (will be JSON encoded)
func (rb *RequestBuilder) WithBody(body interface{}) *RequestBuilder {
	rb.body = body
	return rb
}

// WithHeader adds a header to the request
func (rb *RequestBuilder) WithHeader(key, value string) *RequestBuilder {
	rb.headers[key] = value
	return rb
}

// WithAuth adds a bearer token for the given user
func (rb *RequestBuilder) WithAuth(jwt *JWTHelper, user *model.User) *RequestBuilder {
	rb.jwt = jwt
	rb.user = user
	return rb
}

// Build creates the HTTP request
func (rb *RequestBuilder) Build() *http.Request {
	rb.t.Helper()

	var bodyReader io.Reader
	if rb.body != nil {
		bodyBytes, err := json.Marshal(rb.body)
		if err != nil {
			rb.t.Fatalf("helpers: failed to marshal body: %v", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req := httptest.NewRequest(rb.method, rb.path, bodyReader)
	if rb.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range rb.headers {
		req.Header.Set(k, v)
	}
	if rb.jwt != nil && rb.user != nil {
		req.Header.Set("Authorization", "Bearer "+rb.jwt.GenerateToken(rb.user))
	}

	return req
}

// Do builds the request, serves it with h and returns the recorded response
func (rb *RequestBuilder) Do(h http.Handler) *httptest.ResponseRecorder {
	rb.t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, rb.Build())
	return rr
}

// ============================================================================
// Response Assertion Helpers
// ============================================================================

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, resp *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if resp.Code != expected {
		t.Errorf("expected status %d, got %d. Body: %s", expected, resp.Code, resp.Body.String())
	}
}

// AssertAPIError checks the status and message of an error response
func AssertAPIError(t *testing.T, resp *httptest.ResponseRecorder, expectedStatus int, expectedMessage string) {
	t.Helper()

	AssertStatus(t, resp, expectedStatus)

	var apiErr model.APIError
	if err := json.Unmarshal(resp.Body.Bytes(), &apiErr); err != nil {
		t.Fatalf("failed to decode error response: %v. Body: %s", err, resp.Body.String())
	}
	if expectedMessage != "" && apiErr.Message != expectedMessage {
		t.Errorf("expected message %q, got %q", expectedMessage, apiErr.Message)
	}
}

// AssertValidationError checks for a 400 with an error on a specific field
func AssertValidationError(t *testing.T, resp *httptest.ResponseRecorder, field string) {
	t.Helper()

	AssertStatus(t, resp, http.StatusBadRequest)

	var apiErr model.APIError
	if err := json.Unmarshal(resp.Body.Bytes(), &apiErr); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	for _, fe := range apiErr.Errors {
		if fe.Field == field {
			return
		}
	}

	t.Errorf("expected validation error on field %q, but not found. Errors: %+v", field, apiErr.Errors)
}

// DecodeResponse decodes the response body into the given struct
func DecodeResponse(t *testing.T, resp *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	if err := json.Unmarshal(resp.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode response: %v. Body: %s", err, resp.Body.String())
	}
}

// DecodeData decodes the "data" member of an envelope into v
func DecodeData(t *testing.T, resp *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	DecodeResponse(t, resp, &envelope)
	if err := json.Unmarshal(envelope.Data, v); err != nil {
		t.Fatalf("failed to decode data: %v. Body: %s", err, resp.Body.String())
	}
}

// ============================================================================
// Database Assertion Helpers
// ============================================================================

// AssertRecordExists checks that a record with the full id (e.g. job:abc) exists
func AssertRecordExists(t *testing.T, db database.Database, id string) {
	t.Helper()
	if !recordExists(t, db, id) {
		t.Errorf("expected record %s to exist", id)
	}
}

// AssertRecordNotExists checks that a record with the full id does not exist
func AssertRecordNotExists(t *testing.T, db database.Database, id string) {
	t.Helper()
	if recordExists(t, db, id) {
		t.Errorf("expected record %s to not exist", id)
	}
}

func recordExists(t *testing.T, db database.Database, id string) bool {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	results, err := db.Query(ctx, "SELECT id FROM type::record($id)", map[string]interface{}{"id": id})
	if err != nil {
		t.Fatalf("helpers: record lookup failed: %v", err)
	}
	return hasResults(results)
}

// hasResults reports whether the first statement returned any rows
func hasResults(results []interface{}) bool {
	if len(results) == 0 {
		return false
	}
	resp, ok := results[0].(map[string]interface{})
	if !ok {
		return false
	}
	switch rows := resp["result"].(type) {
	case []interface{}:
		return len(rows) > 0
	case map[string]interface{}:
		return len(rows) > 0
	}
	return false
}

// ============================================================================
// Pointer Helpers
// ============================================================================

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}
