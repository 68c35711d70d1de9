package http

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"debtflow/internal/auth"
	"debtflow/internal/cache"
	"debtflow/internal/core"
	"debtflow/internal/ledger/memory"
	applog "debtflow/internal/log"
	"debtflow/internal/services"
)

const testWindow = 7 * 24 * time.Hour

func newTestServer(t *testing.T, store *memory.Store) *Server {
	t.Helper()
	summaries := services.NewSummaryService(store, cache.NewLRUCache[core.DebtSummary](4, time.Minute), testWindow)
	debts := services.NewDebtService(store, nil, nil, summaries)
	authMgr := auth.NewManager("test-secret", "admin", "hunter2", time.Hour)
	return NewServer(":0", Deps{
		Debts:     debts,
		Store:     store,
		Summaries: summaries,
		Auth:      authMgr,
	})
}

// sessionCookie signs in with the test credentials and returns the cookie.
func sessionCookie(t *testing.T, srv *Server) *http.Cookie {
	t.Helper()
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth", strings.NewReader("username=admin&password=hunter2"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("login status=%d body=%s", rr.Code, rr.Body.String())
	}
	for _, c := range rr.Result().Cookies() {
		if c.Name == auth.SessionCookie {
			return c
		}
	}
	t.Fatalf("no session cookie in login response")
	return nil
}

// seedScenario stores three debts totalling 1,50,000 rupees with an average
// rate of 14.25 and two payments due inside the window.
func seedScenario(t *testing.T, store *memory.Store) {
	t.Helper()
	now := time.Now().UTC()
	debts := []core.Debt{
		{
			Name:           "HDFC credit card",
			Type:           core.CreditCard,
			Balance:        core.Money{Paise: 20000_00},
			InterestRate:   16.5,
			MinimumPayment: core.Money{Paise: 2000_00},
			Frequency:      core.Weekly,
			StartDate:      core.Date{Time: now.AddDate(0, 0, -30)},
		},
		{
			Name:           "Personal loan",
			Type:           core.PersonalLoan,
			Balance:        core.Money{Paise: 30000_00},
			InterestRate:   14.25,
			MinimumPayment: core.Money{Paise: 1500_00},
			Frequency:      core.Weekly,
			StartDate:      core.Date{Time: now.AddDate(0, 0, -14)},
		},
		{
			Name:           "Home loan",
			Type:           core.HomeLoan,
			Balance:        core.Money{Paise: 100000_00},
			InterestRate:   12.0,
			MinimumPayment: core.Money{Paise: 9000_00},
			Frequency:      core.Yearly,
			StartDate:      core.Date{Time: now.AddDate(0, 0, -60)},
		},
	}
	for _, d := range debts {
		if _, err := store.CreateDebt(context.Background(), d); err != nil {
			t.Fatalf("seed debt %q: %v", d.Name, err)
		}
	}
}

func get(srv *Server, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func postForm(srv *Server, path, form string, cookie *http.Cookie) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestLandingAndHealth(t *testing.T) {
	srv := newTestServer(t, memory.New())

	rr := get(srv, "/", nil)
	if rr.Code != 200 {
		t.Fatalf("landing status=%d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"Every debt, one dashboard", "One debt snapshot", "/auth"} {
		if !strings.Contains(body, want) {
			t.Fatalf("landing body missing %q", want)
		}
	}

	if rr := get(srv, "/no-such-page", nil); rr.Code != http.StatusNotFound {
		t.Fatalf("unknown path status=%d", rr.Code)
	}

	for _, path := range []string{"/healthz", "/readyz"} {
		if rr := get(srv, path, nil); rr.Code != 200 {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}
}

func TestRequestLoggingFieldKeys(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	srv := newTestServer(t, memory.New())
	if rr := get(srv, "/", nil); rr.Code != 200 {
		t.Fatalf("landing status=%d", rr.Code)
	}

	logs := buf.String()
	for _, key := range []string{
		applog.FieldRequestID,
		applog.FieldClientIP,
		applog.FieldMethod,
		applog.FieldPath,
		applog.FieldStatusCode,
		applog.FieldDuration,
	} {
		if !strings.Contains(logs, key+"=") {
			t.Fatalf("request log missing %q key: %s", key, logs)
		}
	}
}

func TestAuthFlow(t *testing.T) {
	srv := newTestServer(t, memory.New())

	rr := get(srv, "/auth", nil)
	if rr.Code != 200 || !strings.Contains(rr.Body.String(), "Sign in") {
		t.Fatalf("auth page status=%d", rr.Code)
	}

	rr = postForm(srv, "/auth", "username=admin&password=wrong", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("bad credentials status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Invalid username or password") {
		t.Fatalf("bad credentials body missing error message")
	}

	cookie := sessionCookie(t, srv)
	if cookie.Value == "" {
		t.Fatalf("empty session token")
	}

	if rr := get(srv, "/dashboard", cookie); rr.Code != 200 {
		t.Fatalf("dashboard with session status=%d", rr.Code)
	}
}

func TestProtectedRoutesRedirect(t *testing.T) {
	srv := newTestServer(t, memory.New())

	rr := get(srv, "/dashboard", nil)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/auth" {
		t.Fatalf("redirect location=%q", loc)
	}

	// htmx requests get a client-side redirect instead.
	rr = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ui/debt-summary", nil)
	req.Header.Set("HX-Request", "true")
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("htmx redirect status=%d", rr.Code)
	}
	if rr.Header().Get("HX-Redirect") != "/auth" {
		t.Fatalf("missing HX-Redirect header")
	}
}

func TestDebtSummaryPartial(t *testing.T) {
	store := memory.New()
	seedScenario(t, store)
	srv := newTestServer(t, store)
	cookie := sessionCookie(t, srv)

	rr := get(srv, "/ui/debt-summary", cookie)
	if rr.Code != 200 {
		t.Fatalf("summary status=%d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{
		"₹1,50,000.00",
		"14.3%",
		`data-stat="debt-count">3<`,
		`data-stat="upcoming-payments-count">2<`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("summary body missing %q: %s", want, body)
		}
	}
}

func TestDebtSummaryZeroState(t *testing.T) {
	srv := newTestServer(t, memory.New())
	cookie := sessionCookie(t, srv)

	rr := get(srv, "/ui/debt-summary", cookie)
	if rr.Code != 200 {
		t.Fatalf("summary status=%d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{
		"₹0.00",
		"0.0%",
		`data-stat="debt-count">0<`,
		`data-stat="upcoming-payments-count">0<`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("zero-state body missing %q: %s", want, body)
		}
	}
}

func TestDebtListAndUpcomingPartials(t *testing.T) {
	store := memory.New()
	seedScenario(t, store)
	srv := newTestServer(t, store)
	cookie := sessionCookie(t, srv)

	rr := get(srv, "/ui/debt-list", cookie)
	if rr.Code != 200 {
		t.Fatalf("debt list status=%d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"HDFC credit card", "Home loan", "₹1,00,000.00", "Credit card"} {
		if !strings.Contains(body, want) {
			t.Fatalf("debt list missing %q", want)
		}
	}

	rr = get(srv, "/ui/upcoming-payments", cookie)
	if rr.Code != 200 {
		t.Fatalf("upcoming status=%d", rr.Code)
	}
	body = rr.Body.String()
	if !strings.Contains(body, "HDFC credit card") || !strings.Contains(body, "₹2,000.00") {
		t.Fatalf("upcoming body missing weekly debt: %s", body)
	}
	if strings.Contains(body, "Home loan") {
		t.Fatalf("yearly debt should not be due inside the window")
	}
}

func TestCreateDebtValidationAndSuccess(t *testing.T) {
	srv := newTestServer(t, memory.New())
	cookie := sessionCookie(t, srv)

	// Wrong method
	if rr := get(srv, "/debts", cookie); rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}

	// Invalid amount
	rr := postForm(srv, "/debts", "name=Card&type=credit_card&frequency=monthly&balance=abc&minimum_payment=500&interest_rate=18&start_date=2026-01-05", cookie)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for bad balance, got %d", rr.Code)
	}

	// Invalid rate
	rr = postForm(srv, "/debts", "name=Card&type=credit_card&frequency=monthly&balance=1000&minimum_payment=500&interest_rate=lots&start_date=2026-01-05", cookie)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for bad rate, got %d", rr.Code)
	}

	// Success
	rr = postForm(srv, "/debts", "name=Card&type=credit_card&frequency=monthly&balance=12500.50&minimum_payment=500&interest_rate=18.25&start_date=2026-01-05", cookie)
	if rr.Code != 200 {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "₹12,500.50") {
		t.Fatalf("success body missing formatted balance: %s", rr.Body.String())
	}
	trigger := rr.Header().Get("HX-Trigger")
	for _, want := range []string{"debt:created", "summary:refresh", "form:reset"} {
		if !strings.Contains(trigger, want) {
			t.Fatalf("HX-Trigger missing %q: %s", want, trigger)
		}
	}
}

func TestDeleteDebt(t *testing.T) {
	store := memory.New()
	seedScenario(t, store)
	srv := newTestServer(t, store)
	cookie := sessionCookie(t, srv)

	if rr := postForm(srv, "/debts/delete", "id=999", cookie); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown debt, got %d", rr.Code)
	}

	rr := postForm(srv, "/debts/delete", "id=1", cookie)
	if rr.Code != 200 {
		t.Fatalf("delete status=%d body=%s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Header().Get("HX-Trigger"), "debt:deleted") {
		t.Fatalf("HX-Trigger missing debt:deleted")
	}

	debts, err := store.ListDebts(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(debts) != 2 {
		t.Fatalf("expected 2 debts after delete, got %d", len(debts))
	}
}

func TestRecordPayment(t *testing.T) {
	store := memory.New()
	seedScenario(t, store)
	srv := newTestServer(t, store)
	cookie := sessionCookie(t, srv)

	if rr := postForm(srv, "/payments", "debt_id=1&amount=nope", cookie); rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for bad amount, got %d", rr.Code)
	}

	rr := postForm(srv, "/payments", "debt_id=1&amount=5000&paid_at=2026-08-01", cookie)
	if rr.Code != 200 {
		t.Fatalf("payment status=%d body=%s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Header().Get("HX-Trigger"), "payment:recorded") {
		t.Fatalf("HX-Trigger missing payment:recorded")
	}

	// The summary cache is invalidated, so the next read reflects the payment.
	body := get(srv, "/ui/debt-summary", cookie).Body.String()
	if !strings.Contains(body, "₹1,45,000.00") {
		t.Fatalf("summary not refreshed after payment: %s", body)
	}
}
