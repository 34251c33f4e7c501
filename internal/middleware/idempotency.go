package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/forgo/jobtrack/internal/model"
)

// Idempotency limits
const (
	IdempotencyKeyHeader  = "Idempotency-Key"
	IdempotencyReplayed   = "X-Idempotency-Replayed"
	MaxIdempotencyKeyLen  = 255
	MaxIdempotentBodySize = 1 << 20
)

// IdempotencyStore caches responses of mutating requests by caller and key
type IdempotencyStore struct {
	mu       sync.Mutex
	entries  map[string]*idempotencyEntry
	ttl      time.Duration
	now      func() time.Time
	stopOnce sync.Once
	stopChan chan struct{}
}

type idempotencyEntry struct {
	fingerprint string
	status      int
	headers     http.Header
	body        []byte
	expiresAt   time.Time
	inFlight    bool
	done        chan struct{}
}

// IdempotencyConfig holds configuration for idempotency middleware
type IdempotencyConfig struct {
	TTL     time.Duration // How long to keep responses (default 24h)
	Cleanup time.Duration // Cleanup interval (default 1h)
}

// NewIdempotencyStore creates a new idempotency store and starts its cleanup loop
func NewIdempotencyStore(cfg IdempotencyConfig) *IdempotencyStore {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.Cleanup <= 0 {
		cfg.Cleanup = time.Hour
	}

	store := &IdempotencyStore{
		entries:  make(map[string]*idempotencyEntry),
		ttl:      cfg.TTL,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}

	go store.cleanupLoop(cfg.Cleanup)

	return store
}

// Stop stops the cleanup goroutine. It is safe to call twice.
func (s *IdempotencyStore) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
}

func (s *IdempotencyStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopChan:
			return
		}
	}
}

func (s *IdempotencyStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, entry := range s.entries {
		if !entry.inFlight && entry.expiresAt.Before(now) {
			delete(s.entries, key)
		}
	}
}

// storeKey scopes an idempotency key to the caller
func storeKey(callerID, idempotencyKey string) string {
	h := sha256.New()
	h.Write([]byte(callerID))
	h.Write([]byte{0})
	h.Write([]byte(idempotencyKey))
	return hex.EncodeToString(h.Sum(nil))
}

// requestFingerprint identifies the request a key was first used with
func requestFingerprint(method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{0})
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// idempotencyResponseWriter captures the response for caching
type idempotencyResponseWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (w *idempotencyResponseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *idempotencyResponseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// handlerHeaders returns the headers the wrapped handler added or changed,
// leaving out those set by outer middleware for this request only
func handlerHeaders(before, after http.Header) http.Header {
	out := make(http.Header)
	for k, v := range after {
		if prev, ok := before[k]; ok && slices.Equal(prev, v) {
			continue
		}
		out[k] = slices.Clone(v)
	}
	return out
}

func replay(w http.ResponseWriter, entry *idempotencyEntry) {
	for k, v := range entry.headers {
		w.Header()[k] = slices.Clone(v)
	}
	w.Header().Set(IdempotencyReplayed, "true")
	w.WriteHeader(entry.status)
	_, _ = w.Write(entry.body)
}

// Idempotency returns middleware that replays the stored response when a
// POST or PATCH is repeated with the same Idempotency-Key. Server errors are
// not stored so the client can retry them. It must run after Auth.
func Idempotency(store *IdempotencyStore) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost && r.Method != http.MethodPatch {
				next.ServeHTTP(w, r)
				return
			}

			idempotencyKey := r.Header.Get(IdempotencyKeyHeader)
			if idempotencyKey == "" {
				next.ServeHTTP(w, r)
				return
			}
			if len(idempotencyKey) > MaxIdempotencyKeyLen {
				model.NewBadRequestError("idempotency key is too long").WriteJSON(w)
				return
			}

			callerID := GetUserID(r.Context())
			if callerID == "" {
				model.NewUnauthorizedError("authentication invalid").WriteJSON(w)
				return
			}

			body, err := io.ReadAll(io.LimitReader(r.Body, MaxIdempotentBodySize+1))
			if err != nil || len(body) > MaxIdempotentBodySize {
				model.NewBadRequestError("request body is too large").WriteJSON(w)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			key := storeKey(callerID, idempotencyKey)
			fingerprint := requestFingerprint(r.Method, r.URL.Path, body)

			var entry *idempotencyEntry
			for {
				store.mu.Lock()
				existing, exists := store.entries[key]
				if exists && !existing.inFlight && !existing.expiresAt.After(store.now()) {
					delete(store.entries, key)
					exists = false
				}

				if !exists {
					entry = &idempotencyEntry{
						fingerprint: fingerprint,
						inFlight:    true,
						done:        make(chan struct{}),
					}
					store.entries[key] = entry
					store.mu.Unlock()
					break
				}

				if existing.fingerprint != fingerprint {
					store.mu.Unlock()
					model.NewBadRequestError("idempotency key was used with a different request").WriteJSON(w)
					return
				}

				if !existing.inFlight {
					store.mu.Unlock()
					replay(w, existing)
					return
				}

				// Wait for the first request, then look again: it either
				// stored a response or released the key.
				store.mu.Unlock()
				select {
				case <-existing.done:
				case <-r.Context().Done():
					return
				}
			}

			before := w.Header().Clone()
			irw := &idempotencyResponseWriter{
				ResponseWriter: w,
				status:         http.StatusOK,
			}

			completed := false
			defer func() {
				store.mu.Lock()
				defer store.mu.Unlock()
				if completed && irw.status < http.StatusInternalServerError {
					entry.status = irw.status
					entry.headers = handlerHeaders(before, irw.Header())
					entry.body = irw.body.Bytes()
					entry.expiresAt = store.now().Add(store.ttl)
					entry.inFlight = false
				} else {
					delete(store.entries, key)
				}
				close(entry.done)
			}()

			next.ServeHTTP(irw, r)
			completed = true
		})
	}
}
