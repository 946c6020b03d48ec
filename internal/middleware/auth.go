// Package middleware provides HTTP middleware components for the API server.
package middleware

import (
	"net/http"
	"strings"

	"github.com/yusefzzz/connectly-spark-82/internal/auth"
)

// TokenValidator validates a bearer token and returns its claims.
type TokenValidator interface {
	ValidateToken(tokenString string) (*auth.Claims, error)
}

// Authenticate resolves the Authorization header into a user ID on the
// request context. Requests without a token pass through anonymously;
// requests with an invalid or expired token are rejected. Handlers that
// require a user check GetUserID themselves.
func Authenticate(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				http.Error(w, "Malformed Authorization header", http.StatusUnauthorized)
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil || claims.Type != auth.TokenTypeAccess {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			ctx := SetUserID(r.Context(), claims.UserID())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
