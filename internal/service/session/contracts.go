package session

import (
	"context"
	"time"

	"github.com/m04kA/SMC-RequestSync/internal/domain"
	"github.com/m04kA/SMC-RequestSync/internal/store"
)

// TokenHolder клиент REST API, которому нужен токен сессии
type TokenHolder interface {
	SetToken(token string)
}

// Connection соединение канала push-событий
type Connection interface {
	Connect(ctx context.Context, token string) error
	Disconnect() error
}

// Binder reconciler, привязанный к пользователю
type Binder interface {
	Bind(ctx context.Context, userID string, role domain.Role) error
	Unbind(ctx context.Context) error
}

// Store хранилище заявок
type Store interface {
	Dispatch(t store.Transition) store.State
}

// Inbox очередь уведомлений UI
type Inbox interface {
	Drain() []domain.Notification
}

// TimeProvider источник текущего времени
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
