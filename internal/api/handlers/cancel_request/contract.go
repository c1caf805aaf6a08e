package cancel_request

import (
	"context"

	"github.com/m04kA/SMC-RequestSync/internal/domain"
)

type RequestService interface {
	Cancel(ctx context.Context, userID, id string, reason *string) (*domain.ServiceRequest, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
