package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestManager(ttl time.Duration) *Manager {
	return NewManager("test-secret-at-least-16-chars", "admin", "hunter2hunter2", ttl)
}

func TestLoginAndVerify(t *testing.T) {
	m := newTestManager(time.Hour)

	token, err := m.Login("admin", "hunter2hunter2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Username != "admin" {
		t.Errorf("username = %q, want admin", claims.Username)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	m := newTestManager(time.Hour)

	cases := []struct{ user, pass string }{
		{"admin", "wrong"},
		{"wrong", "hunter2hunter2"},
		{"", ""},
	}
	for _, c := range cases {
		if _, err := m.Login(c.user, c.pass); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Login(%q, %q) error = %v, want ErrInvalidCredentials", c.user, c.pass, err)
		}
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	m := newTestManager(-time.Minute)

	token, err := m.Login("admin", "hunter2hunter2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := m.Verify(token); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	m := newTestManager(time.Hour)
	other := NewManager("a-completely-different-secret", "admin", "hunter2hunter2", time.Hour)

	token, err := other.Login("admin", "hunter2hunter2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := m.Verify(token); err == nil {
		t.Fatal("expected error for token signed with another secret")
	}
}

func TestMiddlewareRedirectsWithoutSession(t *testing.T) {
	m := newTestManager(time.Hour)
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/auth" {
		t.Errorf("Location = %q, want /auth", loc)
	}
}

func TestMiddlewareRedirectsHTMXViaHeader(t *testing.T) {
	m := newTestManager(time.Hour)
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/ui/debt-summary", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if redir := rec.Header().Get("HX-Redirect"); redir != "/auth" {
		t.Errorf("HX-Redirect = %q, want /auth", redir)
	}
}

func TestMiddlewarePassesValidSession(t *testing.T) {
	m := newTestManager(time.Hour)
	token, err := m.Login("admin", "hunter2hunter2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	var gotUser string
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			t.Fatal("claims missing from context")
		}
		gotUser = claims.Username
	}))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotUser != "admin" {
		t.Errorf("username = %q, want admin", gotUser)
	}
}
