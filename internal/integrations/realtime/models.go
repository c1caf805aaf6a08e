package realtime

import (
	"encoding/json"
	"time"
)

// Служебные события канала
const (
	eventJoin      = "phx_join"
	eventLeave     = "phx_leave"
	eventReply     = "phx_reply"
	eventError     = "phx_error"
	eventClose     = "phx_close"
	eventHeartbeat = "heartbeat"

	heartbeatTopic = "phoenix"
)

// EventUnhandled ключ обработчиков, получающих события без собственного обработчика
const EventUnhandled = "*"

const (
	defaultHandshakeTimeout  = 10 * time.Second
	defaultHeartbeatInterval = 30 * time.Second
	defaultReconnectRate     = 0.5
	defaultReconnectBurst    = 1
	writeWait                = 10 * time.Second
)

// Message входящее событие канала
type Message struct {
	Topic   string
	Event   string
	Payload json.RawMessage
	Ref     string
}

// Handler обработчик события. Вызывается синхронно в горутине чтения.
type Handler func(msg Message)

// Subscription регистрация обработчика, возвращаемая On
type Subscription struct {
	id    uint64
	event string
}

// frame исходящий кадр
type frame struct {
	Topic   string      `json:"topic"`
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
	Ref     string      `json:"ref"`
	JoinRef string      `json:"join_ref,omitempty"`
}

// Options параметры подключения
type Options struct {
	URL               string
	HandshakeTimeout  time.Duration
	HeartbeatInterval time.Duration
	ReconnectRate     float64 // попыток в секунду
	ReconnectBurst    int
}

func (o Options) withDefaults() Options {
	if o.HandshakeTimeout <= 0 {
		o.HandshakeTimeout = defaultHandshakeTimeout
	}
	if o.HeartbeatInterval <= 0 {
		o.HeartbeatInterval = defaultHeartbeatInterval
	}
	if o.ReconnectRate <= 0 {
		o.ReconnectRate = defaultReconnectRate
	}
	if o.ReconnectBurst <= 0 {
		o.ReconnectBurst = defaultReconnectBurst
	}
	return o
}

// MetricsRecorder интерфейс сбора метрик соединения
type MetricsRecorder interface {
	IncRealtimeReconnect()
}

// Logger интерфейс для логирования
type Logger interface {
	Debug(format string, v ...interface{})
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
