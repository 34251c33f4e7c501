package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/forgo/jobtrack/internal/model"
)

// ============================================================================
// Test Helpers
// ============================================================================

func idempotentRequest(method, userID, key, body string) *http.Request {
	req := httptest.NewRequest(method, "/api/v1/jobs", strings.NewReader(body))
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	if userID != "" {
		req = req.WithContext(WithUser(req.Context(), &model.TokenClaims{UserID: userID, Name: "ann"}))
	}
	return req
}

// countingHandler answers with a fixed status and counts invocations
func countingHandler(status int, calls *int32) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Call", string(rune('0'+n)))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"data":{"id":"job:1"}}`))
	})
}

// ============================================================================
// NewIdempotencyStore Tests
// ============================================================================

func TestNewIdempotencyStore_DefaultConfig(t *testing.T) {
	t.Parallel()
	store := NewIdempotencyStore(IdempotencyConfig{})
	defer store.Stop()

	if store.ttl != 24*time.Hour {
		t.Errorf("expected TTL 24h, got %v", store.ttl)
	}
	if store.entries == nil {
		t.Error("entries map should be initialized")
	}
}

func TestIdempotencyStore_Stop_ReturnsPromptly(t *testing.T) {
	t.Parallel()
	store := NewIdempotencyStore(IdempotencyConfig{Cleanup: time.Millisecond})

	done := make(chan struct{})
	go func() {
		store.Stop()
		store.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("Stop() did not return within timeout")
	}
}

// ============================================================================
// Key Tests
// ============================================================================

func TestStoreKey_ScopedByCaller(t *testing.T) {
	t.Parallel()

	if storeKey("user:1", "k") != storeKey("user:1", "k") {
		t.Error("same inputs should produce the same key")
	}
	if storeKey("user:1", "k") == storeKey("user:2", "k") {
		t.Error("different callers should produce different keys")
	}
	if storeKey("user:1", "ab") == storeKey("user:1a", "b") {
		t.Error("caller and key must not run together")
	}
	if len(storeKey("user:1", "k")) != 64 {
		t.Error("expected a hex sha256")
	}
}

func TestRequestFingerprint_CoversMethodPathBody(t *testing.T) {
	t.Parallel()
	base := requestFingerprint("POST", "/api/v1/jobs", []byte(`{"a":1}`))

	if base == requestFingerprint("PATCH", "/api/v1/jobs", []byte(`{"a":1}`)) {
		t.Error("method should change the fingerprint")
	}
	if base == requestFingerprint("POST", "/api/v1/jobs/x", []byte(`{"a":1}`)) {
		t.Error("path should change the fingerprint")
	}
	if base == requestFingerprint("POST", "/api/v1/jobs", []byte(`{"a":2}`)) {
		t.Error("body should change the fingerprint")
	}
}

// ============================================================================
// Middleware Tests
// ============================================================================

func TestIdempotency_PassThrough(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		method string
		key    string
	}{
		{"GET ignored", http.MethodGet, "k"},
		{"DELETE ignored", http.MethodDelete, "k"},
		{"POST without key", http.MethodPost, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store := NewIdempotencyStore(IdempotencyConfig{})
			defer store.Stop()

			var calls int32
			mw := Idempotency(store)(countingHandler(http.StatusOK, &calls))
			for i := 0; i < 2; i++ {
				rr := httptest.NewRecorder()
				mw.ServeHTTP(rr, idempotentRequest(tt.method, "user:1", tt.key, `{}`))
				if rr.Header().Get(IdempotencyReplayed) != "" {
					t.Error("response should not be a replay")
				}
			}
			if calls != 2 {
				t.Errorf("expected 2 calls, got %d", calls)
			}
		})
	}
}

func TestIdempotency_ReplaysStoredResponse(t *testing.T) {
	t.Parallel()
	store := NewIdempotencyStore(IdempotencyConfig{})
	defer store.Stop()

	var calls int32
	mw := Idempotency(store)(countingHandler(http.StatusCreated, &calls))

	first := httptest.NewRecorder()
	mw.ServeHTTP(first, idempotentRequest(http.MethodPost, "user:1", "abc", `{"company":"Acme"}`))
	second := httptest.NewRecorder()
	mw.ServeHTTP(second, idempotentRequest(http.MethodPost, "user:1", "abc", `{"company":"Acme"}`))

	if calls != 1 {
		t.Fatalf("expected handler called once, got %d", calls)
	}
	if second.Code != http.StatusCreated {
		t.Errorf("expected replayed status 201, got %d", second.Code)
	}
	if second.Header().Get(IdempotencyReplayed) != "true" {
		t.Error("expected replay header")
	}
	if second.Header().Get("X-Call") != first.Header().Get("X-Call") {
		t.Error("expected original headers to be replayed")
	}
	if second.Body.String() != first.Body.String() {
		t.Errorf("expected body %q, got %q", first.Body.String(), second.Body.String())
	}
}

func TestIdempotency_KeyScopedPerCaller(t *testing.T) {
	t.Parallel()
	store := NewIdempotencyStore(IdempotencyConfig{})
	defer store.Stop()

	var calls int32
	mw := Idempotency(store)(countingHandler(http.StatusCreated, &calls))

	mw.ServeHTTP(httptest.NewRecorder(), idempotentRequest(http.MethodPost, "user:1", "abc", `{}`))
	rr := httptest.NewRecorder()
	mw.ServeHTTP(rr, idempotentRequest(http.MethodPost, "user:2", "abc", `{}`))

	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
	if rr.Header().Get(IdempotencyReplayed) != "" {
		t.Error("another caller must not see a replay")
	}
}

func TestIdempotency_ReusedKeyDifferentBody_Rejected(t *testing.T) {
	t.Parallel()
	store := NewIdempotencyStore(IdempotencyConfig{})
	defer store.Stop()

	var calls int32
	mw := Idempotency(store)(countingHandler(http.StatusCreated, &calls))

	mw.ServeHTTP(httptest.NewRecorder(), idempotentRequest(http.MethodPost, "user:1", "abc", `{"a":1}`))
	rr := httptest.NewRecorder()
	mw.ServeHTTP(rr, idempotentRequest(http.MethodPost, "user:1", "abc", `{"a":2}`))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rr.Code)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestIdempotency_ServerErrorNotStored(t *testing.T) {
	t.Parallel()
	store := NewIdempotencyStore(IdempotencyConfig{})
	defer store.Stop()

	var calls int32
	mw := Idempotency(store)(countingHandler(http.StatusInternalServerError, &calls))

	mw.ServeHTTP(httptest.NewRecorder(), idempotentRequest(http.MethodPost, "user:1", "abc", `{}`))
	rr := httptest.NewRecorder()
	mw.ServeHTTP(rr, idempotentRequest(http.MethodPost, "user:1", "abc", `{}`))

	if calls != 2 {
		t.Errorf("expected retry to reach the handler, got %d calls", calls)
	}
	if rr.Header().Get(IdempotencyReplayed) != "" {
		t.Error("server errors must not be replayed")
	}
}

func TestIdempotency_ClientErrorIsStored(t *testing.T) {
	t.Parallel()
	store := NewIdempotencyStore(IdempotencyConfig{})
	defer store.Stop()

	var calls int32
	mw := Idempotency(store)(countingHandler(http.StatusBadRequest, &calls))

	mw.ServeHTTP(httptest.NewRecorder(), idempotentRequest(http.MethodPost, "user:1", "abc", `{}`))
	rr := httptest.NewRecorder()
	mw.ServeHTTP(rr, idempotentRequest(http.MethodPost, "user:1", "abc", `{}`))

	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected replayed 400, got %d", rr.Code)
	}
}

func TestIdempotency_Rejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		userID string
		key    string
		status int
	}{
		{"key too long", "user:1", strings.Repeat("k", MaxIdempotencyKeyLen+1), http.StatusBadRequest},
		{"no caller", "", "abc", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store := NewIdempotencyStore(IdempotencyConfig{})
			defer store.Stop()

			var calls int32
			rr := httptest.NewRecorder()
			Idempotency(store)(countingHandler(http.StatusCreated, &calls)).
				ServeHTTP(rr, idempotentRequest(http.MethodPost, tt.userID, tt.key, `{}`))

			if rr.Code != tt.status {
				t.Errorf("expected %d, got %d", tt.status, rr.Code)
			}
			if calls != 0 {
				t.Error("handler should not have been called")
			}
		})
	}
}

func TestIdempotency_RestoresRequestBody(t *testing.T) {
	t.Parallel()
	store := NewIdempotencyStore(IdempotencyConfig{})
	defer store.Stop()

	var got []byte
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
	})

	Idempotency(store)(handler).ServeHTTP(httptest.NewRecorder(),
		idempotentRequest(http.MethodPost, "user:1", "abc", `{"company":"Acme"}`))

	if !bytes.Equal(got, []byte(`{"company":"Acme"}`)) {
		t.Errorf("handler saw body %q", got)
	}
}

func TestIdempotency_ExpiredEntry_ProcessesAgain(t *testing.T) {
	t.Parallel()
	store := NewIdempotencyStore(IdempotencyConfig{TTL: time.Minute, Cleanup: time.Hour})
	defer store.Stop()
	clock := newFakeClock()
	store.now = clock.Now

	var calls int32
	mw := Idempotency(store)(countingHandler(http.StatusCreated, &calls))

	mw.ServeHTTP(httptest.NewRecorder(), idempotentRequest(http.MethodPost, "user:1", "abc", `{}`))
	clock.Advance(2 * time.Minute)
	mw.ServeHTTP(httptest.NewRecorder(), idempotentRequest(http.MethodPost, "user:1", "abc", `{}`))

	if calls != 2 {
		t.Errorf("expected 2 calls after expiry, got %d", calls)
	}
}

func TestIdempotency_InFlight_SecondRequestWaits(t *testing.T) {
	t.Parallel()
	store := NewIdempotencyStore(IdempotencyConfig{})
	defer store.Stop()

	var calls int32
	started := make(chan struct{})
	proceed := make(chan struct{})
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		close(started)
		<-proceed
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{}}`))
	})
	mw := Idempotency(store)(handler)

	var wg sync.WaitGroup
	results := make([]*httptest.ResponseRecorder, 2)
	for i := range results {
		results[i] = httptest.NewRecorder()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		mw.ServeHTTP(results[0], idempotentRequest(http.MethodPost, "user:1", "inflight", `{}`))
	}()
	<-started

	wg.Add(1)
	go func() {
		defer wg.Done()
		mw.ServeHTTP(results[1], idempotentRequest(http.MethodPost, "user:1", "inflight", `{}`))
	}()

	time.Sleep(50 * time.Millisecond)
	close(proceed)
	wg.Wait()

	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("expected handler called once, got %d", calls)
	}
	for i, rr := range results {
		if rr.Code != http.StatusCreated {
			t.Errorf("request %d: expected 201, got %d", i, rr.Code)
		}
	}
	if results[1].Header().Get(IdempotencyReplayed) != "true" {
		t.Error("second request should be a replay")
	}
}

func TestIdempotencyStore_Cleanup_RemovesOnlyExpired(t *testing.T) {
	t.Parallel()
	store := NewIdempotencyStore(IdempotencyConfig{TTL: time.Minute, Cleanup: time.Hour})
	defer store.Stop()
	clock := newFakeClock()
	store.now = clock.Now

	store.entries["old"] = &idempotencyEntry{expiresAt: clock.Now().Add(-time.Second)}
	store.entries["live"] = &idempotencyEntry{expiresAt: clock.Now().Add(time.Second)}
	store.entries["busy"] = &idempotencyEntry{inFlight: true, done: make(chan struct{})}

	store.cleanup()

	if _, ok := store.entries["old"]; ok {
		t.Error("expired entry should be removed")
	}
	if _, ok := store.entries["live"]; !ok {
		t.Error("live entry should be kept")
	}
	if _, ok := store.entries["busy"]; !ok {
		t.Error("in-flight entry should be kept")
	}
}

func TestHandlerHeaders_OnlyHandlerChanges(t *testing.T) {
	t.Parallel()
	before := http.Header{"X-Request-Id": {"req-1"}, "Vary": {"Origin"}}
	after := http.Header{
		"X-Request-Id": {"req-1"},
		"Vary":         {"Origin", "Accept-Encoding"},
		"Location":     {"/api/v1/jobs/job:1"},
	}

	got := handlerHeaders(before, after)

	if _, ok := got["X-Request-Id"]; ok {
		t.Error("unchanged outer header should not be stored")
	}
	if got.Get("Location") != "/api/v1/jobs/job:1" {
		t.Error("handler header should be stored")
	}
	if len(got["Vary"]) != 2 {
		t.Error("changed header should be stored whole")
	}
}
