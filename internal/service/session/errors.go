package session

import "errors"

var (
	// ErrInvalidCredentials возвращается, если не указан пользователь, роль или токен
	ErrInvalidCredentials = errors.New("session: invalid credentials")

	// ErrConnect возвращается, если не удалось открыть канал push-событий
	ErrConnect = errors.New("session: failed to connect realtime channel")

	// ErrBind возвращается, если reconciler не удалось привязать к пользователю
	ErrBind = errors.New("session: failed to bind reconciler")

	// ErrUnbind возвращается, если освобождение сессии прошло с ошибками
	ErrUnbind = errors.New("session: unbind completed with errors")
)
