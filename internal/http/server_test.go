package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"spendlog/internal/auth"
	"spendlog/internal/log"
	"spendlog/internal/services"
	"spendlog/internal/sheets/memory"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type testServer struct {
	*Server
	store *memory.Store
}

func newTestServer(t *testing.T, secret string) testServer {
	t.Helper()
	store := memory.New()
	cfg := log.DefaultConfig()
	cfg.Output = io.Discard
	srv := NewServer(":0", Deps{
		Expenses: services.NewExpenseService(store, time.UTC),
		Auth:     services.NewAuthService(store, auth.NewIssuer(secret, 0)),
		Storage:  store,
		Logger:   log.New(cfg),
	}, Options{CORSOrigins: []string{"http://localhost:5173"}, RateLimitPerMinute: 1000})
	t.Cleanup(func() { srv.rateLimiter.Stop() })
	return testServer{Server: srv, store: store}
}

func (ts testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	ts.Handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

func (ts testServer) signup(t *testing.T, email string) string {
	t.Helper()
	rr := ts.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{"email": email, "password": "secret1"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("signup status=%d body=%s", rr.Code, rr.Body.String())
	}
	return decode[services.Session](t, rr).Token
}

func TestHealthAndReady(t *testing.T) {
	ts := newTestServer(t, testSecret)
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := ts.do(t, http.MethodGet, path, "", nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
		if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
			t.Fatalf("%s missing security headers", path)
		}
	}
}

func TestSignupLoginMe(t *testing.T) {
	ts := newTestServer(t, testSecret)

	rr := ts.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{"email": "Ana@Example.com", "password": "secret1"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("signup status=%d body=%s", rr.Code, rr.Body.String())
	}
	signup := decode[services.Session](t, rr)
	if signup.User.Email != "ana@example.com" || signup.Token == "" {
		t.Fatalf("signup body = %+v", signup)
	}

	rr = ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ana@example.com", "password": "secret1"})
	if rr.Code != http.StatusOK {
		t.Fatalf("login status=%d body=%s", rr.Code, rr.Body.String())
	}
	login := decode[services.Session](t, rr)

	rr = ts.do(t, http.MethodGet, "/api/auth/me", login.Token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("me status=%d body=%s", rr.Code, rr.Body.String())
	}
	me := decode[map[string]map[string]string](t, rr)
	if me["user"]["userId"] != signup.User.UserID {
		t.Fatalf("me = %v, want user %s", me, signup.User.UserID)
	}
}

func TestAuthErrors(t *testing.T) {
	ts := newTestServer(t, testSecret)
	ts.signup(t, "bo@example.com")

	tests := []struct {
		name     string
		path     string
		body     map[string]string
		wantCode int
		wantErr  string
	}{
		{"wrong password", "/api/auth/login", map[string]string{"email": "bo@example.com", "password": "nope123"}, http.StatusUnauthorized, "auth_error"},
		{"unknown user", "/api/auth/login", map[string]string{"email": "x@example.com", "password": "secret1"}, http.StatusUnauthorized, "auth_error"},
		{"missing fields", "/api/auth/login", map[string]string{"email": "bo@example.com"}, http.StatusBadRequest, "validation_error"},
		{"duplicate", "/api/auth/signup", map[string]string{"email": "BO@example.com", "password": "secret1"}, http.StatusConflict, "conflict_error"},
		{"bad email", "/api/auth/signup", map[string]string{"email": "bo", "password": "secret1"}, http.StatusBadRequest, "validation_error"},
		{"short password", "/api/auth/signup", map[string]string{"email": "c@example.com", "password": "123"}, http.StatusBadRequest, "validation_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.do(t, http.MethodPost, tt.path, "", tt.body)
			if rr.Code != tt.wantCode {
				t.Fatalf("status=%d want %d body=%s", rr.Code, tt.wantCode, rr.Body.String())
			}
			body := decode[ErrorBody](t, rr)
			if body.Code != tt.wantErr || body.Error == "" {
				t.Fatalf("body = %+v", body)
			}
		})
	}
}

func TestExpensesRequireBearer(t *testing.T) {
	ts := newTestServer(t, testSecret)
	for _, tok := range []string{"", "garbage"} {
		rr := ts.do(t, http.MethodGet, "/api/expenses", tok, nil)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("token %q status=%d", tok, rr.Code)
		}
	}
	rr := ts.do(t, http.MethodGet, "/api/auth/me", "", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("me without token status=%d", rr.Code)
	}
}

func TestAuthNotConfigured(t *testing.T) {
	ts := newTestServer(t, "short")
	rr := ts.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{"email": "a@example.com", "password": "secret1"})
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(decode[ErrorBody](t, rr).Error, "JWT_SECRET") {
		t.Fatalf("missing remediation: %s", rr.Body.String())
	}
}

func TestCreateAndListExpenses(t *testing.T) {
	ts := newTestServer(t, testSecret)
	token := ts.signup(t, "cy@example.com")
	other := ts.signup(t, "di@example.com")

	rr := ts.do(t, http.MethodPost, "/api/expenses", token, map[string]any{
		"date": "2026-02-12", "time": "15:45", "amount": 12.5,
		"category": "Food", "paymentMode": "Card", "notes": "lunch",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", rr.Code, rr.Body.String())
	}
	created := decode[map[string]any](t, rr)
	if created["amount"] != 12.5 || created["paymentMode"] != "Card" || created["createdAt"] == "" {
		t.Fatalf("created = %v", created)
	}
	if _, hasUser := created["userId"]; hasUser {
		t.Fatal("create response leaks userId")
	}

	rr = ts.do(t, http.MethodPost, "/api/expenses", token, map[string]any{
		"date": "2026-02-13", "amount": "3", "category": "Transport", "paymentMode": "Cash",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create with string amount status=%d body=%s", rr.Code, rr.Body.String())
	}

	rr = ts.do(t, http.MethodGet, "/api/expenses?from=2026-02-12&to=2026-02-12", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("list status=%d", rr.Code)
	}
	list := decode[struct {
		Expenses []map[string]any `json:"expenses"`
	}](t, rr)
	if len(list.Expenses) != 1 || list.Expenses[0]["notes"] != "lunch" || list.Expenses[0]["time"] != "15:45" {
		t.Fatalf("list = %v", list.Expenses)
	}

	rr = ts.do(t, http.MethodGet, "/api/expenses", other, nil)
	if body := strings.TrimSpace(rr.Body.String()); body != `{"expenses":[]}` {
		t.Fatalf("other user's list = %s", body)
	}
}

func TestCreateExpenseRejectsInvalid(t *testing.T) {
	ts := newTestServer(t, testSecret)
	token := ts.signup(t, "ed@example.com")

	bodies := []map[string]any{
		{"amount": -5, "category": "Food", "paymentMode": "Cash"},
		{"amount": "abc", "category": "Food", "paymentMode": "Cash"},
		{"category": "Food", "paymentMode": "Cash"},
		{"amount": 5, "category": " ", "paymentMode": "Cash"},
		{"amount": 5, "category": "Food"},
	}
	for i, b := range bodies {
		rr := ts.do(t, http.MethodPost, "/api/expenses", token, b)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("body %d status=%d body=%s", i, rr.Code, rr.Body.String())
		}
	}
	if n := ts.store.ExpenseRowCount(); n != 0 {
		t.Fatalf("rows appended = %d", n)
	}
}

func TestTotalsHoursAndOptions(t *testing.T) {
	ts := newTestServer(t, testSecret)
	token := ts.signup(t, "fi@example.com")

	for _, e := range []map[string]any{
		{"date": "2026-02-12", "time": "08:30", "amount": 10, "category": "Food", "paymentMode": "Cash"},
		{"date": "2026-02-09", "time": "08:10", "amount": 20, "category": "Food", "paymentMode": "Cash"},
		{"date": "2026-02-02", "time": "21:00", "amount": 40, "category": "Food", "paymentMode": "Cash"},
	} {
		if rr := ts.do(t, http.MethodPost, "/api/expenses", token, e); rr.Code != http.StatusCreated {
			t.Fatalf("seed status=%d body=%s", rr.Code, rr.Body.String())
		}
	}

	rr := ts.do(t, http.MethodGet, "/api/expenses/totals?date=2026-02-12", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("totals status=%d body=%s", rr.Code, rr.Body.String())
	}
	totals := decode[map[string]float64](t, rr)
	if totals["daily"] != 10 || totals["weekly"] != 30 || totals["monthly"] != 70 {
		t.Fatalf("totals = %v", totals)
	}

	rr = ts.do(t, http.MethodGet, "/api/expenses/totals?date=nope", token, nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("bad date status=%d", rr.Code)
	}

	rr = ts.do(t, http.MethodGet, "/api/expenses/hours?month=2026-02", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("hours status=%d body=%s", rr.Code, rr.Body.String())
	}
	hours := decode[services.HoursReport](t, rr)
	if len(hours.Buckets) != 24 || hours.Buckets[8].Count != 2 || hours.Buckets[21].Total != 40 {
		t.Fatalf("hours = %+v", hours)
	}

	rr = ts.do(t, http.MethodGet, "/api/expenses/options", token, nil)
	opts := decode[map[string][]string](t, rr)
	if len(opts["categories"]) == 0 || len(opts["paymentModes"]) == 0 {
		t.Fatalf("options = %v", opts)
	}
}

func TestRateLimitOnMutations(t *testing.T) {
	store := memory.New()
	cfg := log.DefaultConfig()
	cfg.Output = io.Discard
	srv := NewServer(":0", Deps{
		Expenses: services.NewExpenseService(store, time.UTC),
		Auth:     services.NewAuthService(store, auth.NewIssuer(testSecret, 0)),
		Storage:  store,
		Logger:   log.New(cfg),
	}, Options{RateLimitPerMinute: 1})
	defer srv.rateLimiter.Stop()

	post := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"a@b.co","password":"secret1"}`))
		rr := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rr, req)
		return rr.Code
	}
	if code := post(); code != http.StatusUnauthorized {
		t.Fatalf("first status=%d", code)
	}
	if code := post(); code != http.StatusTooManyRequests {
		t.Fatalf("second status=%d", code)
	}
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t, testSecret)
	rr := ts.do(t, http.MethodGet, "/api/nothing", "", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status=%d", rr.Code)
	}
	if decode[ErrorBody](t, rr).Code != "not_found_error" {
		t.Fatalf("body = %s", rr.Body.String())
	}
}
