package journal

import (
	"context"

	"github.com/m04kA/SMC-RequestSync/internal/domain"
)

// Repository интерфейс хранилища журнала
type Repository interface {
	Append(ctx context.Context, entry *domain.JournalEntry) error
	ListByRequest(ctx context.Context, requestID string, limit int) ([]*domain.JournalEntry, error)
}

// MetricsRecorder интерфейс сбора метрик записи журнала
type MetricsRecorder interface {
	IncJournalWrite(outcome string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
