package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/TripShare-io/tripshare/internal/apperr"
	"github.com/TripShare-io/tripshare/internal/auth"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// TokenAuthMiddleware validates the bearer token and attaches the decoded
// identity to the request context.
func (api *Api) TokenAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			respondError(w, apperr.Auth("Access denied. No token provided."))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			respondError(w, apperr.Auth("Authorization header format must be Bearer {token}"))
			return
		}

		claims, err := api.tokens.ValidateToken(parts[1])
		if err != nil {
			respondError(w, apperr.Auth("Invalid token."))
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin short-circuits with 403 unless the authenticated caller
// holds the admin role. Must run after TokenAuthMiddleware.
func (api *Api) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			respondError(w, apperr.Auth("Access denied. No token provided."))
			return
		}
		if !claims.IsAdmin() {
			respondError(w, apperr.Forbidden("Access denied. Admin privileges required."))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClaimsFromContext retrieves the authenticated identity from the context.
func ClaimsFromContext(ctx context.Context) (*auth.TokenClaims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*auth.TokenClaims)
	return claims, ok
}
