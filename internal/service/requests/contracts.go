package requests

import (
	"context"
	"time"

	"github.com/m04kA/SMC-RequestSync/internal/domain"
	"github.com/m04kA/SMC-RequestSync/internal/store"
)

// Gateway интерфейс клиента REST API заявок
type Gateway interface {
	Create(ctx context.Context, draft *domain.RequestDraft) (*domain.ServiceRequest, error)
	ListMine(ctx context.Context, filters domain.ListFilters) (*domain.RequestPage, error)
	ListAvailable(ctx context.Context, filters domain.ListFilters) (*domain.RequestPage, error)
	GetByID(ctx context.Context, id string) (*domain.ServiceRequest, error)
	Accept(ctx context.Context, id string, quote domain.AcceptQuote) (*domain.AcceptResult, error)
	Update(ctx context.Context, id string, patch *domain.RequestPatch) (*domain.ServiceRequest, error)
	Cancel(ctx context.Context, id string, reason *string) (*domain.ServiceRequest, error)
}

// Store интерфейс хранилища заявок
type Store interface {
	Dispatch(t store.Transition) store.State
	Snapshot() store.State
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
