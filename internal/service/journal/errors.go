package journal

import "errors"

var (
	// ErrDisabled возвращается при чтении истории, когда журнал выключен
	ErrDisabled = errors.New("journal: disabled")

	// ErrInvalidInput возвращается при пустом идентификаторе заявки
	ErrInvalidInput = errors.New("journal: invalid input data")

	// ErrInternal возвращается при ошибках хранилища
	ErrInternal = errors.New("journal: internal error")
)
