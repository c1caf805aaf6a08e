package reconciler

import "errors"

var (
	// ErrAlreadyBound возвращается при Bind другого пользователя без предварительного Unbind
	ErrAlreadyBound = errors.New("reconciler: already bound to another user")

	// ErrInvalidBinding возвращается при пустом пользователе или неизвестной роли
	ErrInvalidBinding = errors.New("reconciler: invalid binding")

	// ErrJoinFailed возвращается, если не удалось войти в канал
	ErrJoinFailed = errors.New("reconciler: failed to join channel")

	// ErrLeaveFailed возвращается, если не удалось покинуть канал при Unbind
	ErrLeaveFailed = errors.New("reconciler: failed to leave channel")

	errMalformedPayload = errors.New("malformed payload")
)
