package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"saldo/internal/config"
	apperrors "saldo/internal/errors"
	"saldo/internal/logger"
	"saldo/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
}

func newTestTokenManager() *TokenManager {
	return NewTokenManager(&config.Config{
		JWTSecret:               "test-secret",
		JWTExpirationDur:        15 * time.Minute,
		JWTRefreshExpirationDur: 720 * time.Hour,
	})
}

func testUser() *models.User {
	user := &models.User{Username: "alice"}
	user.ID = "0190a0a0-0000-7000-8000-000000000001"
	return user
}

func parseBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse response body: %v", err)
	}
	return result
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := parseBody(t, rec)
	errObj, ok := body["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object, got %v", body)
	}
	code, _ := errObj["code"].(string)
	return code
}

func setupAuthRouter(tokens *TokenManager) *gin.Engine {
	r := gin.New()
	r.Use(AuthMiddleware(tokens))
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString(UserIDKey), "username": c.GetString(UsernameKey)})
	})
	return r
}

func doAuthRequest(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", http.NoBody)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddleware(t *testing.T) {
	tokens := newTestTokenManager()
	r := setupAuthRouter(tokens)

	access, err := tokens.GenerateAccessToken(testUser())
	if err != nil {
		t.Fatalf("failed to generate access token: %v", err)
	}
	refresh, err := tokens.GenerateRefreshToken(testUser())
	if err != nil {
		t.Fatalf("failed to generate refresh token: %v", err)
	}

	expiredTokens := newTestTokenManager()
	expiredTokens.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expired, err := expiredTokens.GenerateAccessToken(testUser())
	if err != nil {
		t.Fatalf("failed to generate expired token: %v", err)
	}

	otherKey := NewTokenManager(&config.Config{JWTSecret: "other", JWTExpirationDur: time.Minute})
	forged, err := otherKey.GenerateAccessToken(testUser())
	if err != nil {
		t.Fatalf("failed to generate forged token: %v", err)
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid_access_token", "Bearer " + access, http.StatusOK},
		{"lowercase_scheme", "bearer " + access, http.StatusOK},
		{"missing_header", "", http.StatusUnauthorized},
		{"wrong_scheme", "Basic " + access, http.StatusUnauthorized},
		{"refresh_token_rejected", "Bearer " + refresh, http.StatusUnauthorized},
		{"expired_token", "Bearer " + expired, http.StatusUnauthorized},
		{"wrong_key", "Bearer " + forged, http.StatusUnauthorized},
		{"garbage", "Bearer not.a.jwt", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doAuthRequest(r, tt.header)
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if tt.wantStatus == http.StatusOK {
				body := parseBody(t, rec)
				if body["user_id"] != testUser().ID || body["username"] != "alice" {
					t.Errorf("unexpected identity in context: %v", body)
				}
				return
			}
			if code := errorCode(t, rec); code != "UNAUTHORIZED" {
				t.Errorf("expected UNAUTHORIZED, got %s", code)
			}
		})
	}
}

func TestValidateRefreshToken(t *testing.T) {
	tokens := newTestTokenManager()

	refresh, err := tokens.GenerateRefreshToken(testUser())
	if err != nil {
		t.Fatalf("failed to generate refresh token: %v", err)
	}
	claims, err := tokens.ValidateRefreshToken(refresh)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.UserID != testUser().ID || claims.Subject != testUser().ID {
		t.Errorf("unexpected claims %+v", claims)
	}

	access, _ := tokens.GenerateAccessToken(testUser())
	if _, err := tokens.ValidateRefreshToken(access); err == nil {
		t.Error("expected access token to be rejected as refresh token")
	}
}

func TestHashToken(t *testing.T) {
	a := HashToken("token")
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
	if a != HashToken("token") {
		t.Error("expected hashing to be deterministic")
	}
	if a == HashToken("other") {
		t.Error("expected different tokens to hash differently")
	}
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/app", func(c *gin.Context) {
		_ = c.Error(apperrors.ErrExpenseNotFound)
	})
	r.GET("/wrapped", func(c *gin.Context) {
		_ = c.Error(apperrors.Wrap(apperrors.ErrInternalServer, errors.New("db down")))
	})
	r.GET("/plain", func(c *gin.Context) {
		_ = c.Error(errors.New("boom"))
	})
	r.GET("/written", func(c *gin.Context) {
		c.JSON(http.StatusTeapot, gin.H{"ok": true})
		_ = c.Error(errors.New("ignored"))
	})

	tests := []struct {
		path       string
		wantStatus int
		wantCode   string
	}{
		{"/app", http.StatusNotFound, "EXPENSE_NOT_FOUND"},
		{"/wrapped", http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"/plain", http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, http.NoBody))
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if code := errorCode(t, rec); code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, code)
			}
		})
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/written", http.NoBody))
	if rec.Code != http.StatusTeapot {
		t.Errorf("expected handler response to be kept, got %d", rec.Code)
	}
}

func TestRecoveryAndNotFound(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.NoRoute(NotFound())
	r.GET("/panic", func(c *gin.Context) {
		panic("unexpected")
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", http.NoBody))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "INTERNAL_ERROR" {
		t.Errorf("expected INTERNAL_ERROR, got %s", code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nowhere", http.NoBody))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "NOT_FOUND" {
		t.Errorf("expected NOT_FOUND, got %s", code)
	}
}

func TestRequestLogging(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogging())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, RequestID(c))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", http.NoBody))
	generated := rec.Header().Get("X-Request-ID")
	if generated == "" || rec.Body.String() != generated {
		t.Errorf("expected generated request id in header and context, got %q / %q", generated, rec.Body.String())
	}

	incoming := "0190a0a0-0000-7000-8000-0000000000aa"
	req := httptest.NewRequest(http.MethodGet, "/ping", http.NoBody)
	req.Header.Set("X-Request-ID", incoming)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != incoming {
		t.Errorf("expected incoming request id to be reused, got %q", got)
	}
}
