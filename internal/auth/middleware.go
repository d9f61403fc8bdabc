package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

var errNoToken = errors.New("auth: no bearer token")

// contextKey is an unexported type for context keys in this package.
// Using a package-private type means no other package can read or shadow
// the userID value we store in the request context.
type contextKey string

const userIDKey contextKey = "userID"

// unauthorizedBody matches the API's standard error envelope. The
// middleware writes it directly rather than importing the handler package
// (which would create an import cycle — handlers import auth for
// UserIDFromContext).
const unauthorizedBody = `{"success":false,"error":{"code":"unauthorized","message":"valid authentication required"}}`

// RequireAuth enforces authentication on protected routes.
//
// It expects the access token in the Authorization header:
//
//	Authorization: Bearer <jwt>
//
// A missing, malformed, expired or tampered token stops the chain with a
// 401. On success the userID travels down the chain in the request context.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := extractUserID(r, tokens)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(unauthorizedBody))
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth extracts the user identity if a valid token is present but
// never blocks the request. Public reads (a single post, a profile) use
// this: anonymous viewers get isLiked/isFollowing as false, logged-in
// viewers get their own annotations.
func OptionalAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID, err := extractUserID(r, tokens); err == nil && userID != "" {
				r = r.WithContext(context.WithValue(r.Context(), userIDKey, userID))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserIDFromContext retrieves the authenticated user's id from the request
// context. Returns ("", false) for anonymous requests.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// extractUserID reads and validates the bearer token.
func extractUserID(r *http.Request, tokens *TokenService) (string, error) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", errNoToken
	}

	return tokens.Validate(strings.TrimPrefix(header, prefix))
}
