package get_request_history

import (
	"context"

	"github.com/m04kA/SMC-RequestSync/internal/domain"
)

type HistoryService interface {
	History(ctx context.Context, requestID string, limit int) ([]*domain.JournalEntry, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
