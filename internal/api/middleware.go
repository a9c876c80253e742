package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

// Identity headers set by the upstream gateway after it has verified the
// caller's credentials. This service trusts them; it never sees passwords
// or tokens itself.
const (
	headerUserID = "X-User-ID"
	headerAdmin  = "X-Admin"
)

// AuthMiddleware resolves caller identity from gateway headers
type AuthMiddleware struct{}

// NewAuthMiddleware creates new auth middleware
func NewAuthMiddleware() *AuthMiddleware {
	return &AuthMiddleware{}
}

// Authenticate requires an X-User-ID header and attaches the caller to the
// request context
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(headerUserID))
		if userID == "" {
			writeAuthError(w, http.StatusUnauthorized, "not authenticated", "missing "+headerUserID+" header")
			return
		}

		caller := &Caller{
			UserID:  userID,
			IsAdmin: strings.EqualFold(r.Header.Get(headerAdmin), "true"),
		}

		slog.Debug("authenticated request", "user_id", caller.UserID, "admin", caller.IsAdmin)

		ctx := ContextWithCaller(r.Context(), caller)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin returns middleware that rejects non-admin callers
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller := CallerFromContext(r.Context())
		if caller == nil {
			writeAuthError(w, http.StatusUnauthorized, "not authenticated", "authentication required")
			return
		}

		if !caller.IsAdmin {
			slog.Warn("admin access denied", "user_id", caller.UserID, "path", r.URL.Path)
			writeAuthError(w, http.StatusForbidden, "permission denied", "admin access required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// AuthError represents an authentication error response
type AuthError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeAuthError writes JSON error response
func writeAuthError(w http.ResponseWriter, status int, error, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(AuthError{
		Error:   error,
		Message: message,
	})
}
