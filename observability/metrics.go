// Package observability provides Prometheus metrics and OpenTelemetry tracing
// for the eventdesk client.
package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the metric instruments for an eventdesk client.
type Metrics struct {
	RequestsTotal       *prometheus.CounterVec
	RequestLatency      prometheus.Histogram
	ListFetchesTotal    *prometheus.CounterVec
	NotificationsTotal  *prometheus.CounterVec
	JournalEntriesTotal *prometheus.CounterVec
}

// NewMetrics creates the instruments and registers them with reg.
// Pass prometheus.DefaultRegisterer for process-wide exposition, or a fresh
// prometheus.NewRegistry() in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "eventdesk_requests_total",
			Help: "API requests by method and status code (0 for transport errors).",
		}, []string{"method", "status"}),
		RequestLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "eventdesk_request_latency_seconds",
			Help:    "API request round-trip latency.",
			Buckets: prometheus.DefBuckets,
		}),
		ListFetchesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "eventdesk_list_fetches_total",
			Help: "Event list fetches by outcome (ok, error, canceled, stale).",
		}, []string{"outcome"}),
		NotificationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "eventdesk_notifications_total",
			Help: "User-visible notifications by severity.",
		}, []string{"severity"}),
		JournalEntriesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "eventdesk_journal_entries_total",
			Help: "Journaled mutations by action and result.",
		}, []string{"action", "result"}),
	}
}

// RecordRequest records one API request with its status and latency.
func (m *Metrics) RecordRequest(method string, status int, latencySeconds float64) {
	m.RequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.RequestLatency.Observe(latencySeconds)
}

// RecordListFetch records the outcome of one list fetch.
func (m *Metrics) RecordListFetch(outcome string) {
	m.ListFetchesTotal.WithLabelValues(outcome).Inc()
}
