package store

import "errors"

var (
	ErrInvalidRecord   = errors.New("store: record violates lifecycle invariants")
	ErrDuplicateRecord = errors.New("store: record is listed twice in one collection")
	ErrDivergentCopies = errors.New("store: views hold different copies of one record")
)
