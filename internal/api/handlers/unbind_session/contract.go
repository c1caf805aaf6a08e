package unbind_session

import "context"

type SessionManager interface {
	Unbind(ctx context.Context) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
}
