package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"tablepay-gateway/internal/auth"
)

type contextKey string

const authContextKey contextKey = "authContext"

// AuthContext is what a verified staff token resolves to. RawToken is the
// bearer exactly as received; console handlers forward it to the backend.
type AuthContext struct {
	UserID      string
	SessionID   string
	Role        auth.StaffRole
	Email       string
	RawToken    string
	Permissions []string
}

func WithAuthContext(ctx context.Context, authCtx *AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey, authCtx)
}

func GetAuthContext(ctx context.Context) (*AuthContext, bool) {
	value := ctx.Value(authContextKey)
	if value == nil {
		return nil, false
	}
	ac, ok := value.(*AuthContext)
	return ac, ok
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	writeAuthErrorDebug(w, status, message, "")
}

func writeAuthErrorDebug(w http.ResponseWriter, status int, message string, debug string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload := map[string]any{
		"success": false,
		"error":   "UNAUTHORIZED",
		"message": message,
	}

	if os.Getenv("APP_ENV") == "development" && strings.TrimSpace(debug) != "" {
		payload["debug"] = debug
	}

	_ = json.NewEncoder(w).Encode(payload)
}

// StaffAuth guards the console routes. It verifies the backend-issued JWT
// with the shared secret and, for staff tokens, checks the route's required
// permission against the token's permission list. The backend remains the
// authority on revocation; an expired or resigned token simply fails
// upstream when forwarded.
func StaffAuth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawToken := auth.ParseBearerToken(r.Header.Get("Authorization"))
			claims, err := auth.VerifyAccessToken(rawToken, jwtSecret)
			if err != nil {
				writeAuthErrorDebug(w, http.StatusUnauthorized, "Authorization token required", err.Error())
				return
			}

			if claims.Role != auth.RoleManager && claims.Role != auth.RoleStaff {
				writeAuthError(w, http.StatusForbidden, "Staff access required")
				return
			}

			permissions := claims.Permissions
			if claims.Role == auth.RoleStaff {
				if perm := auth.GetPermissionForAPI(r.URL.Path, r.Method); perm != nil {
					has := false
					for _, p := range permissions {
						if p == string(*perm) {
							has = true
							break
						}
					}
					if !has {
						writeAuthError(w, http.StatusForbidden, "You do not have permission to access this resource")
						return
					}
				}
			}

			authCtx := &AuthContext{
				UserID:      claims.UserID,
				SessionID:   claims.SessionID,
				Role:        claims.Role,
				Email:       claims.Email,
				RawToken:    rawToken,
				Permissions: permissions,
			}

			ctx := WithAuthContext(r.Context(), authCtx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
