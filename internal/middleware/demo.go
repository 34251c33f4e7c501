package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/forgo/jobtrack/internal/model"
)

// DemoChecker defines the interface for identifying the shared demo account
type DemoChecker interface {
	IsDemoUser(ctx context.Context, userID string) (bool, error)
}

// DemoReadOnly rejects mutating requests from the demo account.
// It must run after Auth.
func DemoReadOnly(checker DemoChecker) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := GetUserID(r.Context())
			if userID == "" {
				model.NewUnauthorizedError("authentication invalid").WriteJSON(w)
				return
			}

			isDemo, err := checker.IsDemoUser(r.Context(), userID)
			if err != nil {
				slog.Error("demo account lookup failed",
					"request_id", GetRequestID(r.Context()),
					"user_id", userID,
					"error", err,
				)
				model.NewInternalError("").WriteJSON(w)
				return
			}

			if isDemo {
				model.NewReadOnlyError().WriteJSON(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
