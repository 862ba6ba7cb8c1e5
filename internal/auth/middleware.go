package auth

import (
	"context"
	"net/http"
)

// contextKey is an unexported type for this package's context keys, so no
// other package can read or shadow the values we store in the request
// context.
type contextKey string

const userEmailKey contextKey = "userEmail"

// CookieName is the session cookie holding the JWT.
const CookieName = "token"

// RequireAuth enforces authentication on protected routes.
//
// It reads the JWT from the session cookie, validates it, and stores the
// user's email in the request context. Missing or invalid tokens end the
// request with 401 Unauthorized.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email, err := extractUserEmail(r, tokens)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				http.Error(w, `{"error":"unauthorized","message":"valid authentication required"}`, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithUserEmail(r.Context(), email)))
		})
	}
}

// OptionalAuth extracts the user identity when a valid token is present but
// lets anonymous requests through. Used on public reads (event list,
// notifications) where signed-in users get extra affordances client-side.
func OptionalAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if email, err := extractUserEmail(r, tokens); err == nil && email != "" {
				r = r.WithContext(ContextWithUserEmail(r.Context(), email))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ContextWithUserEmail returns a context carrying the authenticated user's
// email. The middleware uses it after validating a token; tests use it to
// call protected handlers directly.
func ContextWithUserEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, userEmailKey, email)
}

// UserEmailFromContext retrieves the authenticated user's email from the
// request context. Returns ("", false) for anonymous requests.
func UserEmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(userEmailKey).(string)
	return email, ok && email != ""
}

// extractUserEmail reads the JWT cookie and validates it. Shared by
// RequireAuth and OptionalAuth.
func extractUserEmail(r *http.Request, tokens *TokenService) (string, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		// http.ErrNoCookie — no token present, the request is anonymous.
		return "", err
	}

	return tokens.Validate(cookie.Value)
}
