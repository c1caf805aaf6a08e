package reconciler

import (
	"context"
	"time"

	"github.com/m04kA/SMC-RequestSync/internal/domain"
	"github.com/m04kA/SMC-RequestSync/internal/integrations/realtime"
	"github.com/m04kA/SMC-RequestSync/internal/store"
)

// Dispatcher доступ к хранилищу заявок
type Dispatcher interface {
	Dispatch(t store.Transition) store.State
	Snapshot() store.State
}

// Transport канал push-событий
type Transport interface {
	Join(ctx context.Context, topic string) error
	Leave(ctx context.Context, topic string) error
	On(event string, handler realtime.Handler) realtime.Subscription
	Off(sub realtime.Subscription)
}

// Notifier получатель уведомлений для UI
type Notifier interface {
	Publish(n domain.Notification)
}

// Recorder журнал обработанных событий. Record не должен блокировать.
type Recorder interface {
	Record(entry domain.JournalEntry)
}

// MetricsRecorder интерфейс сбора метрик событий
type MetricsRecorder interface {
	IncRealtimeEvent(event, outcome string)
	IncNotification(kind string)
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
