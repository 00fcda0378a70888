package http

import (
	"context"
	"net/http"

	"github.com/hivestarter/governance/internal/adapters/identity"
)

type contextKey string

// UserIDKey holds the connected username in the request context.
const UserIDKey contextKey = "userID"

// AuthMiddleware resolves the connected user from the access_token
// cookie. Requests without a valid token pass through anonymously; the
// service layer rejects mutations that require an identity.
func AuthMiddleware(verifier *identity.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie("access_token")
			if err == nil && cookie.Value != "" {
				if username, err := verifier.Username(cookie.Value); err == nil {
					ctx := context.WithValue(r.Context(), UserIDKey, username)
					r = r.WithContext(ctx)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// connectedUsername returns the username placed in the context by
// AuthMiddleware, or "" when the request is anonymous.
func connectedUsername(r *http.Request) string {
	username, _ := r.Context().Value(UserIDKey).(string)
	return username
}
