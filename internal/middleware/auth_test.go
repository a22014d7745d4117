package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"tablepay-gateway/internal/auth"
)

const testSecret = "test-secret"

func staffToken(t *testing.T, role auth.StaffRole, permissions []string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &auth.Claims{
		UserID:      "u1",
		SessionID:   "s1",
		Role:        role,
		Permissions: permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return signed
}

func guardedHandler(t *testing.T) (http.Handler, *bool) {
	t.Helper()
	reached := false
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		ac, ok := GetAuthContext(r.Context())
		if !ok || ac.RawToken == "" {
			t.Error("auth context missing")
		}
		w.WriteHeader(http.StatusOK)
	})
	return StaffAuth(testSecret)(inner), &reached
}

func TestStaffAuthRejectsMissingToken(t *testing.T) {
	handler, reached := guardedHandler(t)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil))

	if rec.Code != http.StatusUnauthorized || *reached {
		t.Fatalf("status = %d, reached = %v", rec.Code, *reached)
	}
}

func TestStaffAuthManagerPasses(t *testing.T) {
	handler, reached := guardedHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
	req.Header.Set("Authorization", "Bearer "+staffToken(t, auth.RoleManager, nil))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || !*reached {
		t.Fatalf("status = %d, reached = %v", rec.Code, *reached)
	}
}

func TestStaffAuthEnforcesPermissions(t *testing.T) {
	handler, reached := guardedHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
	req.Header.Set("Authorization", "Bearer "+staffToken(t, auth.RoleStaff, []string{"menu"}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden || *reached {
		t.Fatalf("missing grant: status = %d, reached = %v", rec.Code, *reached)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
	req.Header.Set("Authorization", "Bearer "+staffToken(t, auth.RoleStaff, []string{"orders"}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !*reached {
		t.Fatalf("with grant: status = %d, reached = %v", rec.Code, *reached)
	}
}

func TestRequestIDMintedAndEchoed(t *testing.T) {
	handler := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Request-Id") == "" {
			t.Error("request id not set on request")
		}
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatal("request id not echoed")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Correlation-Id", "corr-1")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Header().Get("X-Request-Id") != "corr-1" {
		t.Fatalf("correlation id not propagated: %q", rec.Header().Get("X-Request-Id"))
	}
}
