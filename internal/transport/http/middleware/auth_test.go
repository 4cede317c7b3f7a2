package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"timekeep/internal/auth"
)

const testSecret = "test-secret"

func protectedHandler(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func requestWithToken(t *testing.T, role string) *http.Request {
	t.Helper()
	token, err := auth.GenerateToken(testSecret, auth.Claims{
		UserID: "user-1",
		Email:  "user@example.com",
		Role:   role,
	}, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestAuthPopulatesUserContext(t *testing.T) {
	var got auth.Claims
	var ok bool
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = GetUser(r.Context())
	})

	Auth(testSecret)(inner).ServeHTTP(httptest.NewRecorder(), requestWithToken(t, auth.RoleAdmin))

	if !ok {
		t.Fatal("claims missing from context")
	}
	if got.UserID != "user-1" || got.Role != auth.RoleAdmin {
		t.Fatalf("claims = %+v", got)
	}
}

func TestAuthIgnoresGarbageToken(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUser(r.Context()); ok {
			t.Fatal("garbage token produced claims")
		}
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	Auth(testSecret)(inner).ServeHTTP(httptest.NewRecorder(), req)
}

func TestRequireAuthRejectsAnonymous(t *testing.T) {
	rec := httptest.NewRecorder()
	RequireAuth(protectedHandler(t)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAdmin(t *testing.T) {
	rec := httptest.NewRecorder()
	Auth(testSecret)(RequireAdmin(protectedHandler(t))).ServeHTTP(rec, requestWithToken(t, auth.RoleEmployee))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("employee status = %d, want 403", rec.Code)
	}

	rec = httptest.NewRecorder()
	Auth(testSecret)(RequireAdmin(protectedHandler(t))).ServeHTTP(rec, requestWithToken(t, auth.RoleAdmin))
	if rec.Code != http.StatusOK {
		t.Fatalf("admin status = %d, want 200", rec.Code)
	}
}
