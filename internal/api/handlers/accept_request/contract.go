package accept_request

import (
	"context"

	"github.com/m04kA/SMC-RequestSync/internal/domain"
)

type RequestService interface {
	Accept(ctx context.Context, providerID, id string, quote domain.AcceptQuote) (*domain.AcceptResult, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
