package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/floktl/XploreED-sub002/internal/repository"
	"github.com/floktl/XploreED-sub002/internal/service"
	"github.com/floktl/XploreED-sub002/pkg/response"
)

type contextKey string

const (
	UserKey  contextKey = "user"
	TokenKey contextKey = "session_token"
)

// SessionCookie is the cookie the session token travels in when no
// Authorization header is set.
const SessionCookie = "session"

// Auth returns a middleware that resolves the session token from the
// Authorization header or the session cookie and loads the user.
func Auth(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				response.Unauthorized(w, "missing session token")
				return
			}

			user, err := authService.ValidateToken(r.Context(), token)
			if err != nil {
				response.Unauthorized(w, "invalid or expired session")
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			ctx = context.WithValue(ctx, TokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminOnly rejects requests from non-admin users. Must run after Auth.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUser(r.Context())
		if user == nil || !user.IsAdmin() {
			response.Forbidden(w, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func tokenFromRequest(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
		return ""
	}

	if cookie, err := r.Cookie(SessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// GetUser extracts the authenticated user from the request context.
func GetUser(ctx context.Context) *repository.User {
	if user, ok := ctx.Value(UserKey).(*repository.User); ok {
		return user
	}
	return nil
}

// GetToken extracts the session token from the request context.
func GetToken(ctx context.Context) string {
	if token, ok := ctx.Value(TokenKey).(string); ok {
		return token
	}
	return ""
}
