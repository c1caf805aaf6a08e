package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор prometheus-метрик агента синхронизации
// Все методы безопасны для nil-получателя: компоненты работают и без метрик
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	GatewayRequestsTotal   *prometheus.CounterVec
	GatewayRequestDuration *prometheus.HistogramVec

	RealtimeEventsTotal     *prometheus.CounterVec
	RealtimeReconnectsTotal prometheus.Counter

	NotificationsTotal *prometheus.CounterVec
	JournalWritesTotal *prometheus.CounterVec
}

// New регистрирует метрики в глобальном реестре prometheus
func New(serviceName string) *Metrics {
	return NewWithRegisterer(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegisterer регистрирует метрики в переданном реестре (для тестов)
func NewWithRegisterer(serviceName string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	constLabels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of local API requests",
			ConstLabels: constLabels,
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "Local API request duration",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "path"}),
		GatewayRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "gateway_requests_total",
			Help:        "Total number of service-request backend calls by outcome",
			ConstLabels: constLabels,
		}, []string{"operation", "outcome"}),
		GatewayRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "gateway_request_duration_seconds",
			Help:        "Service-request backend call duration",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"operation"}),
		RealtimeEventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "realtime_events_total",
			Help:        "Realtime events received by outcome",
			ConstLabels: constLabels,
		}, []string{"event", "outcome"}),
		RealtimeReconnectsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name:        "realtime_reconnects_total",
			Help:        "Realtime connection re-establishments",
			ConstLabels: constLabels,
		}),
		NotificationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "notifications_total",
			Help:        "Notifications surfaced to the UI by kind",
			ConstLabels: constLabels,
		}, []string{"kind"}),
		JournalWritesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "journal_writes_total",
			Help:        "Event journal writes by outcome",
			ConstLabels: constLabels,
		}, []string{"outcome"}),
	}
}

func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func (m *Metrics) ObserveGatewayRequest(operation, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.GatewayRequestsTotal.WithLabelValues(operation, outcome).Inc()
	m.GatewayRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *Metrics) IncRealtimeEvent(event, outcome string) {
	if m == nil {
		return
	}
	m.RealtimeEventsTotal.WithLabelValues(event, outcome).Inc()
}

func (m *Metrics) IncRealtimeReconnect() {
	if m == nil {
		return
	}
	m.RealtimeReconnectsTotal.Inc()
}

func (m *Metrics) IncNotification(kind string) {
	if m == nil {
		return
	}
	m.NotificationsTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncJournalWrite(outcome string) {
	if m == nil {
		return
	}
	m.JournalWritesTotal.WithLabelValues(outcome).Inc()
}
