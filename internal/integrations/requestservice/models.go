package requestservice

import "time"

// ErrorResponse модель ошибки от backend
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// text возвращает человекочитаемое сообщение
func (e *ErrorResponse) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// cancelRequest тело POST /service-requests/{id}/cancel
type cancelRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// MetricsRecorder интерфейс сбора метрик вызовов backend
type MetricsRecorder interface {
	ObserveGatewayRequest(operation, outcome string, duration time.Duration)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Названия операций для логов и метрик
const (
	opCreate        = "create"
	opListMine      = "list_mine"
	opListAvailable = "list_available"
	opGetByID       = "get_by_id"
	opAccept        = "accept"
	opUpdate        = "update"
	opCancel        = "cancel"
)
