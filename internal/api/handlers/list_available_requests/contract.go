package list_available_requests

import (
	"context"

	"github.com/m04kA/SMC-RequestSync/internal/domain"
)

type RequestService interface {
	ListAvailable(ctx context.Context, filters domain.ListFilters) (*domain.RequestPage, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
