package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAuthenticateRequiresUserHeader(t *testing.T) {
	m := NewAuthMiddleware()
	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run without identity")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/challenges", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestAuthenticateAttachesCaller(t *testing.T) {
	m := NewAuthMiddleware()

	var got *Caller
	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = CallerFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/challenges", nil)
	req.Header.Set("X-User-ID", "user-123")
	req.Header.Set("X-Admin", "true")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got == nil {
		t.Fatal("caller missing from context")
	}
	if got.UserID != "user-123" {
		t.Errorf("wrong user id: %s", got.UserID)
	}
	if !got.IsAdmin {
		t.Error("admin flag not propagated")
	}
}

func TestRequireAdmin(t *testing.T) {
	m := NewAuthMiddleware()

	ran := false
	protected := m.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ran = true
	}))

	// Non-admin caller is rejected
	req := httptest.NewRequest(http.MethodPost, "/api/v1/challenges", nil)
	req = req.WithContext(ContextWithCaller(req.Context(), &Caller{UserID: "user-123"}))
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for non-admin, got %d", rec.Code)
	}
	if ran {
		t.Error("handler should not run for non-admin")
	}

	// Admin caller passes
	req = httptest.NewRequest(http.MethodPost, "/api/v1/challenges", nil)
	req = req.WithContext(ContextWithCaller(req.Context(), &Caller{UserID: "admin-1", IsAdmin: true}))
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for admin, got %d", rec.Code)
	}
	if !ran {
		t.Error("handler should run for admin")
	}

	// No caller at all
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/challenges", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without caller, got %d", rec.Code)
	}
}
