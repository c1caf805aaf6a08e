package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewWithRegisterer("request-sync", prometheus.NewRegistry())

	m.ObserveGatewayRequest("accept", "conflict", 20*time.Millisecond)
	m.ObserveGatewayRequest("accept", "conflict", 10*time.Millisecond)
	m.IncRealtimeEvent("service-request-updated", "applied")
	m.IncRealtimeReconnect()
	m.IncNotification("new_match")
	m.IncJournalWrite("ok")
	m.ObserveHTTPRequest("GET", "/api/v1/state", 200, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.GatewayRequestsTotal.WithLabelValues("accept", "conflict")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RealtimeEventsTotal.WithLabelValues("service-request-updated", "applied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RealtimeReconnectsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationsTotal.WithLabelValues("new_match")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.JournalWritesTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/state", "200")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveGatewayRequest("create", "ok", time.Second)
		m.IncRealtimeEvent("x", "dropped")
		m.IncRealtimeReconnect()
		m.IncNotification("order_created")
		m.IncJournalWrite("error")
		m.ObserveHTTPRequest("POST", "/", 500, time.Second)
	})
}
