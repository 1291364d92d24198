// Package metrics exposes the relay's Prometheus instrumentation.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records webhook and outbound API activity. A nil *Metrics is a
// valid no-op receiver so tests can pass nil.
type Metrics struct {
	webhookEventsTotal        *prometheus.CounterVec
	webhookProcessingDuration *prometheus.HistogramVec
	apiCallsTotal             *prometheus.CounterVec
	tokenRefreshTotal         *prometheus.CounterVec
}

// New registers the relay metrics on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		webhookEventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tagrelay",
			Name:      "webhook_events_total",
			Help:      "Total number of webhook events received, by type and outcome.",
		}, []string{"event_type", "status"}),

		webhookProcessingDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tagrelay",
			Name:      "webhook_processing_duration_seconds",
			Help:      "Duration of webhook processing in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"event_type"}),

		apiCallsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tagrelay",
			Name:      "bothelp_api_calls_total",
			Help:      "Total number of BotHelp API calls, by endpoint and status.",
		}, []string{"endpoint", "status"}),

		tokenRefreshTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tagrelay",
			Name:      "bothelp_token_refresh_total",
			Help:      "Total number of BotHelp token exchanges, by outcome.",
		}, []string{"status"}),
	}
}

func (m *Metrics) RecordWebhookEvent(eventType, status string) {
	if m == nil {
		return
	}
	m.webhookEventsTotal.WithLabelValues(eventType, status).Inc()
}

func (m *Metrics) RecordWebhookProcessingDuration(eventType string, duration time.Duration) {
	if m == nil {
		return
	}
	m.webhookProcessingDuration.WithLabelValues(eventType).Observe(duration.Seconds())
}

func (m *Metrics) RecordAPICall(endpoint, status string) {
	if m == nil {
		return
	}
	m.apiCallsTotal.WithLabelValues(endpoint, status).Inc()
}

func (m *Metrics) RecordTokenRefresh(status string) {
	if m == nil {
		return
	}
	m.tokenRefreshTotal.WithLabelValues(status).Inc()
}
