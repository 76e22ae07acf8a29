// Package metrics exposes Prometheus instrumentation for outbound calls
// made by the console to the admin API.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for APIMetrics.
const (
	OutcomeOK         = "ok"
	OutcomeValidation = "validation"
	OutcomeStatus     = "status"
	OutcomeBusiness   = "business"
	OutcomeTransport  = "transport"
)

// APIMetrics counts API requests and tracks their latency per endpoint.
type APIMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	inFlight        prometheus.Gauge
}

func NewAPIMetrics(reg prometheus.Registerer) *APIMetrics {
	m := &APIMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicdesk",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total admin API requests by endpoint and outcome",
		}, []string{"endpoint", "outcome"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clinicdesk",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Latency of admin API requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "clinicdesk",
			Subsystem: "api",
			Name:      "requests_in_flight",
			Help:      "Admin API requests currently awaiting a response",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.requestDuration, m.inFlight)
	return m
}

// Start marks a request as in flight and returns the function that records
// its completion.
func (m *APIMetrics) Start(endpoint string) func(outcome string) {
	if m == nil {
		return func(string) {}
	}
	m.inFlight.Inc()
	started := time.Now()
	return func(outcome string) {
		m.inFlight.Dec()
		m.ObserveRequest(endpoint, outcome, time.Since(started))
	}
}

func (m *APIMetrics) ObserveRequest(endpoint, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(endpoint, outcome).Inc()
	m.requestDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}
