package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"saldo/internal/config"
	"saldo/internal/events"
	"saldo/internal/logger"
	"saldo/internal/monthname"
	"saldo/internal/testutil"
	"saldo/internal/validator"
)

// testApp holds the full application stack backed by an isolated in-memory SQLite.
type testApp struct {
	router    *gin.Engine
	publisher *events.MemoryPublisher
}

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	months, err := monthname.New(monthname.DefaultLocale)
	if err != nil {
		t.Fatalf("monthname.New: %v", err)
	}
	cfg := &config.Config{
		JWTSecret:               "router-test-secret",
		JWTExpirationDur:        15 * time.Minute,
		JWTRefreshExpirationDur: 24 * time.Hour,
		BalancePeriodFallback:   config.PeriodFallbackCoupled,
		FixedExpenseEditPolicy:  config.FixedExpenseEditPreserve,
	}
	publisher := &events.MemoryPublisher{}

	return &testApp{router: newRouter(cfg, db, publisher, months), publisher: publisher}
}

func (a *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

// signup registers a user and returns its access and refresh tokens.
func (a *testApp) signup(t *testing.T, username string) (string, string) {
	t.Helper()
	body := fmt.Sprintf(`{"username":%q,"password":"password123","password_confirm":"password123"}`, username)
	rec := a.request("POST", "/api/v1/auth/signup", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["access_token"].(string), result["refresh_token"].(string)
}

// create POSTs body and returns the decoded object stored under key.
func (a *testApp) create(t *testing.T, path, body, token, key string) map[string]interface{} {
	t.Helper()
	rec := a.request("POST", path, body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST %s failed: %d %s", path, rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)[key].(map[string]interface{})
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertMoney(t *testing.T, obj map[string]interface{}, key, want string) {
	t.Helper()
	raw, ok := obj[key].(string)
	if !ok {
		t.Fatalf("expected %s to be a decimal string, got %v", key, obj[key])
	}
	got, err := decimal.NewFromString(raw)
	if err != nil {
		t.Fatalf("%s: %v", key, err)
	}
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("expected %s = %s, got %s", key, want, raw)
	}
}

func (a *testApp) balance(t *testing.T, token, query string) map[string]interface{} {
	t.Helper()
	rec := a.request("GET", "/api/v1/balance"+query, "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("balance failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["balance"].(map[string]interface{})
}

func TestAuthFlow_SignupLoginRefreshLogout(t *testing.T) {
	app := setupApp(t)

	access, refresh := app.signup(t, "maria")

	rec := app.request("GET", "/api/v1/profile", "", access)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// Usernames are unique regardless of case.
	rec = app.request("POST", "/api/v1/auth/signup",
		`{"username":"MARIA","password":"password123","password_confirm":"password123"}`, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate username, got %d", rec.Code)
	}

	rec = app.request("POST", "/api/v1/auth/login", `{"username":"maria","password":"password123"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	loginRefresh := parseJSON(t, rec)["refresh_token"].(string)

	// Login replaced the signup session.
	rec = app.request("POST", "/api/v1/auth/refresh", fmt.Sprintf(`{"refresh_token":%q}`, refresh), "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for superseded refresh token, got %d", rec.Code)
	}

	rec = app.request("POST", "/api/v1/auth/refresh", fmt.Sprintf(`{"refresh_token":%q}`, loginRefresh), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh failed: %d %s", rec.Code, rec.Body.String())
	}
	rotated := parseJSON(t, rec)
	newAccess := rotated["access_token"].(string)
	newRefresh := rotated["refresh_token"].(string)

	// The used refresh token no longer works.
	rec = app.request("POST", "/api/v1/auth/refresh", fmt.Sprintf(`{"refresh_token":%q}`, loginRefresh), "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for rotated refresh token, got %d", rec.Code)
	}

	rec = app.request("POST", "/api/v1/auth/logout", "", newAccess)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = app.request("POST", "/api/v1/auth/refresh", fmt.Sprintf(`{"refresh_token":%q}`, newRefresh), "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", rec.Code)
	}
}

func TestAuthFlow_WrongPassword(t *testing.T) {
	app := setupApp(t)
	app.signup(t, "joao")

	rec := app.request("POST", "/api/v1/auth/login", `{"username":"joao","password":"wrong-password"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	rec = app.request("POST", "/api/v1/auth/login", `{"username":"nobody","password":"password123"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown user, got %d", rec.Code)
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	app := setupApp(t)

	for _, route := range []struct{ method, path string }{
		{"GET", "/api/v1/balance"},
		{"GET", "/api/v1/expenses"},
		{"POST", "/api/v1/salaries"},
		{"GET", "/api/v1/fixed-expenses"},
		{"GET", "/api/v1/profile"},
		{"POST", "/api/v1/auth/logout"},
	} {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			rec := app.request(route.method, route.path, "", "")
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestBalanceFlow_InstallmentExpense(t *testing.T) {
	app := setupApp(t)
	token, _ := app.signup(t, "maria")

	app.create(t, "/api/v1/salaries", `{"year":2024,"amount":"3000.00"}`, token, "salary")

	rec := app.request("POST", "/api/v1/expenses",
		`{"description":"Notebook","total_amount":"1200.00","purchase_date":"2024-01-15","is_installment":true,"installments_number":3}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create expense failed: %d %s", rec.Code, rec.Body.String())
	}
	created := parseJSON(t, rec)
	if created["balance_url"] != "/api/v1/balance?month=1&year=2024" {
		t.Errorf("unexpected balance_url %v", created["balance_url"])
	}
	expenseID := created["expense"].(map[string]interface{})["id"].(string)

	rec = app.request("GET", "/api/v1/expenses/"+expenseID+"/installments", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("installments failed: %d", rec.Code)
	}
	installments := parseJSON(t, rec)["installments"].([]interface{})
	if len(installments) != 3 {
		t.Fatalf("expected 3 installments, got %d", len(installments))
	}
	for _, raw := range installments {
		assertMoney(t, raw.(map[string]interface{}), "installment_amount", "400")
	}

	for _, month := range []string{"1", "2", "3"} {
		b := app.balance(t, token, "?month="+month+"&year=2024")
		assertMoney(t, b, "salary", "3000")
		assertMoney(t, b, "total_installments", "400")
		assertMoney(t, b, "balance", "2600")
	}

	b := app.balance(t, token, "?month=1&year=2024")
	if b["month_name"] != "Janeiro" {
		t.Errorf("expected Janeiro, got %v", b["month_name"])
	}

	b = app.balance(t, token, "?month=4&year=2024")
	assertMoney(t, b, "total_expenses", "0")
	assertMoney(t, b, "balance", "3000")

	if len(app.publisher.Events()) < 2 {
		t.Errorf("expected salary and expense events, got %d", len(app.publisher.Events()))
	}
}

func TestBalanceFlow_FixedExpenseAndDelete(t *testing.T) {
	app := setupApp(t)
	token, _ := app.signup(t, "maria")

	app.create(t, "/api/v1/salaries", `{"year":2024,"amount":"3000.00"}`, token, "salary")
	fixed := app.create(t, "/api/v1/fixed-expenses",
		`{"description":"Internet","monthly_amount":"150.00","start_date":"2024-03-01"}`, token, "fixed_expense")

	if !strings.HasPrefix(fixed["end_date"].(string), "2025-02-01") {
		t.Errorf("expected end_date 2025-02-01, got %v", fixed["end_date"])
	}

	b := app.balance(t, token, "?month=3&year=2024")
	assertMoney(t, b, "total_fixed_expenses", "150")
	assertMoney(t, b, "balance", "2850")

	b = app.balance(t, token, "?month=2&year=2024")
	assertMoney(t, b, "total_fixed_expenses", "0")

	rec := app.request("DELETE", "/api/v1/fixed-expenses/"+fixed["id"].(string), "", token)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete failed: %d %s", rec.Code, rec.Body.String())
	}

	b = app.balance(t, token, "?month=3&year=2024")
	assertMoney(t, b, "total_fixed_expenses", "0")
	assertMoney(t, b, "balance", "3000")
}

func TestExpenseFlow_ToggleInstallment(t *testing.T) {
	app := setupApp(t)
	token, _ := app.signup(t, "maria")

	rec := app.request("POST", "/api/v1/expenses",
		`{"description":"TV","total_amount":"900.00","purchase_date":"2024-05-10","is_installment":true,"installments_number":3}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create failed: %d %s", rec.Code, rec.Body.String())
	}
	id := parseJSON(t, rec)["expense"].(map[string]interface{})["id"].(string)

	rec = app.request("PUT", "/api/v1/expenses/"+id,
		`{"description":"TV","total_amount":"900.00","purchase_date":"2024-05-10","is_installment":false}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("update failed: %d %s", rec.Code, rec.Body.String())
	}

	b := app.balance(t, token, "?month=5&year=2024")
	assertMoney(t, b, "direct_expenses", "900")
	assertMoney(t, b, "installments_due", "0")

	b = app.balance(t, token, "?month=6&year=2024")
	assertMoney(t, b, "total_expenses", "0")
}

func TestCrossUserAccessIsNotFound(t *testing.T) {
	app := setupApp(t)
	owner, _ := app.signup(t, "maria")
	other, _ := app.signup(t, "joao")

	salary := app.create(t, "/api/v1/salaries", `{"year":2024,"amount":"3000.00"}`, owner, "salary")
	rec := app.request("POST", "/api/v1/expenses",
		`{"description":"Lunch","total_amount":"25.00","purchase_date":"2024-01-10"}`, owner)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create failed: %d %s", rec.Code, rec.Body.String())
	}
	expenseID := parseJSON(t, rec)["expense"].(map[string]interface{})["id"].(string)

	for _, path := range []string{
		"/api/v1/salaries/" + salary["id"].(string),
		"/api/v1/expenses/" + expenseID,
		"/api/v1/expenses/" + expenseID + "/installments",
	} {
		rec := app.request("GET", path, "", other)
		if rec.Code != http.StatusNotFound {
			t.Errorf("GET %s: expected 404, got %d", path, rec.Code)
		}
	}

	rec = app.request("DELETE", "/api/v1/expenses/"+expenseID, "", other)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 deleting another user's expense, got %d", rec.Code)
	}

	// The other user's balance ignores the owner's records.
	b := app.balance(t, other, "?month=1&year=2024")
	assertMoney(t, b, "salary", "0")
	assertMoney(t, b, "total_expenses", "0")
}

func TestDuplicateSalaryYear(t *testing.T) {
	app := setupApp(t)
	token, _ := app.signup(t, "maria")

	app.create(t, "/api/v1/salaries", `{"year":2024,"amount":"3000.00"}`, token, "salary")

	rec := app.request("POST", "/api/v1/salaries", `{"year":2024,"amount":"3500.00"}`, token)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestHealthAndNotFound(t *testing.T) {
	app := setupApp(t)

	rec := app.request("GET", "/api/health", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if parseJSON(t, rec)["status"] != "ok" {
		t.Errorf("unexpected health body %s", rec.Body.String())
	}

	rec = app.request("GET", "/api/v1/nope", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
