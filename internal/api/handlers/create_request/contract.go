package create_request

import (
	"context"

	"github.com/m04kA/SMC-RequestSync/internal/domain"
)

type RequestService interface {
	Create(ctx context.Context, draft *domain.RequestDraft) (*domain.ServiceRequest, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
