package bind_session

import (
	"context"

	"github.com/m04kA/SMC-RequestSync/internal/service/session"
)

type SessionManager interface {
	Bind(ctx context.Context, creds session.Credentials) (*session.Session, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
