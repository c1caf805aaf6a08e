package requestservice

import "errors"

var (
	// ErrValidation возвращается, когда черновик/котировка некорректны (локально или по ответу 400/422)
	ErrValidation = errors.New("requestservice: validation failed")

	// ErrAuth возвращается при отсутствии аутентификации или прав на ресурс (401/403)
	ErrAuth = errors.New("requestservice: not authenticated or not authorized")

	// ErrNotFound возвращается, когда заявка не найдена или не видна пользователю (404)
	ErrNotFound = errors.New("requestservice: service request not found")

	// ErrConflict возвращается, когда заявку уже принял другой исполнитель (409)
	// Это ожидаемый исход гонки, а не сбой
	ErrConflict = errors.New("requestservice: service request is no longer available")

	// ErrTransport возвращается при сетевых ошибках, таймаутах и ответах 5xx
	// Повтор той же команды безопасен
	ErrTransport = errors.New("requestservice: transport error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("requestservice: invalid response")
)
