package middleware

import (
	"context"
	"net/http"

	"github.com/m04kA/SMC-RequestSync/internal/api/handlers"
	"github.com/m04kA/SMC-RequestSync/internal/domain"
	"github.com/m04kA/SMC-RequestSync/internal/service/session"
)

type contextKey string

const (
	userIDKey contextKey = "userID"
	roleKey   contextKey = "role"
)

const msgNoSession = "сессия не привязана"

// SessionProvider источник текущей сессии
type SessionProvider interface {
	Current() (session.Session, bool)
}

// Session пропускает запрос только при привязанной сессии и кладет пользователя и роль в контекст
func Session(provider SessionProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			current, ok := provider.Current()
			if !ok {
				handlers.RespondUnauthorized(w, msgNoSession)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, current.UserID)
			ctx = context.WithValue(ctx, roleKey, current.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithSession кладет пользователя и роль в контекст (используется в тестах handlers)
func WithSession(ctx context.Context, userID string, role domain.Role) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, roleKey, role)
}

// GetUserID извлекает ID пользователя из контекста
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}

// GetRole извлекает роль пользователя из контекста
func GetRole(ctx context.Context) (domain.Role, bool) {
	role, ok := ctx.Value(roleKey).(domain.Role)
	return role, ok
}
