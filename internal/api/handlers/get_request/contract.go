package get_request

import (
	"context"

	"github.com/m04kA/SMC-RequestSync/internal/domain"
)

type RequestService interface {
	FetchOne(ctx context.Context, id string) (*domain.ServiceRequest, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
