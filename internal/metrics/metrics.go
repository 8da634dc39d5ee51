// Package metrics holds the Prometheus collectors exported by spesa.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "spesa"

// Result label values.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// StoreMetrics counts and times document store operations.
type StoreMetrics struct {
	Operations *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
	Ledger     *prometheus.GaugeVec
}

// NewStoreMetrics registers the store collectors on reg.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	m := &StoreMetrics{
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Document store operations by backend, operation and result.",
		}, []string{"backend", "op", "result"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operation_seconds",
			Help:      "Latency of document store operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"backend", "op"}),
		Ledger: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "items",
			Help:      "Lists and items in the last saved ledger.",
		}, []string{"kind"}),
	}
	reg.MustRegister(m.Operations, m.Duration, m.Ledger)
	return m
}

// Observe records one finished operation.
func (m *StoreMetrics) Observe(backend, op string, seconds float64, err error) {
	if m == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	m.Operations.WithLabelValues(backend, op, result).Inc()
	m.Duration.WithLabelValues(backend, op).Observe(seconds)
}

// SetLedgerSize records the size of the most recently saved ledger.
func (m *StoreMetrics) SetLedgerSize(lists, items int) {
	if m == nil {
		return
	}
	m.Ledger.WithLabelValues("lists").Set(float64(lists))
	m.Ledger.WithLabelValues("items").Set(float64(items))
}

// HTTPMetrics counts API requests.
type HTTPMetrics struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewHTTPMetrics registers the HTTP collectors on reg.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	m := &HTTPMetrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
	reg.MustRegister(m.Requests, m.Duration)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
