package realtime

import "errors"

var (
	ErrNotConnected = errors.New("realtime: not connected")
	ErrDial         = errors.New("realtime: failed to dial")
	ErrSend         = errors.New("realtime: failed to send frame")
)
