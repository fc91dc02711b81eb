package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/GarimaGupta40/Main-Intercorp/internal/auth"
)

// TokenValidator is satisfied by *auth.JWTService.
type TokenValidator interface {
	ValidateAccessToken(token string) (*auth.Claims, error)
}

// AccessTokenCookie is read before the Authorization header.
const AccessTokenCookie = "access_token"

type claimsKey struct{}

func deny(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// ExtractToken returns the bearer token of r, or "".
func ExtractToken(r *http.Request) string {
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

// WithClaims stores the signed-in customer on ctx.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// AuthMiddleware turns away requests that do not carry a valid token.
func AuthMiddleware(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := ExtractToken(r)
			if raw == "" {
				deny(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			claims, err := tokens.ValidateAccessToken(raw)
			if err != nil {
				deny(w, "invalid token", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// OptionalAuthMiddleware lets every request through. Callers with a valid
// token are signed in; everyone else shops as a guest.
func OptionalAuthMiddleware(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if raw := ExtractToken(r); raw != "" {
				if claims, err := tokens.ValidateAccessToken(raw); err == nil {
					r = r.WithContext(WithClaims(r.Context(), claims))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole answers 401 for guests and 403 for signed-in customers
// outside roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := GetUserFromContext(r.Context())
			if !ok {
				deny(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			for _, role := range roles {
				if claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			deny(w, "forbidden", http.StatusForbidden)
		})
	}
}

// RequireAdmin guards the dashboard routes.
func RequireAdmin() func(http.Handler) http.Handler {
	return RequireRole(auth.RoleAdmin)
}

func GetUserFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*auth.Claims)
	return claims, ok && claims != nil
}

// GetEmail is "" for guests.
func GetEmail(ctx context.Context) string {
	if claims, ok := GetUserFromContext(ctx); ok {
		return claims.Email
	}
	return ""
}

func IsLoggedIn(ctx context.Context) bool {
	return GetEmail(ctx) != ""
}
