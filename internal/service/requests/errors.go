package requests

import "errors"

// ConflictMessage сообщение для UI, когда заявку уже принял другой исполнитель
const ConflictMessage = "request is no longer available"

var (
	// ErrNotAcceptable возвращается, когда исполнитель не может принять заявку
	ErrNotAcceptable = errors.New("request cannot be accepted")

	// ErrNotOwner возвращается, когда пользователь не является владельцем заявки
	ErrNotOwner = errors.New("user does not own the request")

	// ErrNotCancellable возвращается, когда заявка уже не может быть отменена
	ErrNotCancellable = errors.New("request cannot be cancelled")

	// ErrNotEditable возвращается, когда заявка уже не может быть изменена
	ErrNotEditable = errors.New("request cannot be updated")
)
