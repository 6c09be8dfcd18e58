package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rolodex-app/rolodex/internal/platform/httpx"
)

type userContextKey struct{}

// ContextWithUser stores the resolved user in context.
func ContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext extracts the resolved user from context.
func UserFromContext(ctx context.Context) *User {
	user, _ := ctx.Value(userContextKey{}).(*User)
	return user
}

// Middleware resolves the bearer token into a user for protected routes.
type Middleware struct {
	Service *Service
	Logger  *slog.Logger
}

// RequireUser rejects requests without a valid access token and stores the
// resolved user in the request context.
func (m Middleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := BearerToken(r)
		if token == "" {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		user, err := m.Service.CurrentUser(r.Context(), token)
		if err != nil {
			if m.Logger != nil {
				m.Logger.Debug("reject bearer token", slog.String("path", r.URL.Path))
			}
			httpx.RespondError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
	})
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
