// Package observability provides Prometheus metrics for the gateway.
package observability

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"llmgateway/internal/core"
)

const (
	namespace    = "llmgateway"
	unknownModel = "unknown"
)

// Outcome labels recorded for every upstream call
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// PrometheusHooks records upstream call metrics.
//
// Metrics:
//   - llmgateway_upstream_requests_total: upstream calls by model and outcome
//   - llmgateway_upstream_errors_total: failed upstream calls by error type
//   - llmgateway_upstream_request_duration_seconds: upstream call latency by model
type PrometheusHooks struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	errors   *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewPrometheusHooks creates and registers upstream metrics with the provided registry.
// If registry is nil, a fresh registry with Go runtime and process collectors is used.
func NewPrometheusHooks(registry *prometheus.Registry) *PrometheusHooks {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	h := &PrometheusHooks{
		registry: registry,
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upstream_requests_total",
				Help:      "Total number of upstream Messages API calls",
			},
			[]string{"model", "outcome"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upstream_errors_total",
				Help:      "Total number of failed upstream calls by error type",
			},
			[]string{"error_type"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upstream_request_duration_seconds",
				Help:      "Upstream call latency in seconds",
				// LLM latencies range from sub-second to tens of seconds
				Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0},
			},
			[]string{"model"},
		),
	}

	registry.MustRegister(h.requests, h.errors, h.latency)

	return h
}

// OnUpstreamResult implements anthropic.Hooks.
// model is the one upstream answered with; an empty model is recorded as "unknown".
func (h *PrometheusHooks) OnUpstreamResult(model string, duration time.Duration, err error) {
	if model == "" {
		model = unknownModel
	}
	h.latency.WithLabelValues(model).Observe(duration.Seconds())

	if err == nil {
		h.requests.WithLabelValues(model, OutcomeSuccess).Inc()
		return
	}

	h.requests.WithLabelValues(model, OutcomeError).Inc()
	h.errors.WithLabelValues(errorType(err)).Inc()
}

// Handler returns an HTTP handler exposing the registry in Prometheus format
func (h *PrometheusHooks) Handler() http.Handler {
	return promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})
}

// Registry returns the underlying Prometheus registry
func (h *PrometheusHooks) Registry() *prometheus.Registry {
	return h.registry
}

func errorType(err error) string {
	var gwErr *core.GatewayError
	if errors.As(err, &gwErr) {
		return string(gwErr.Type)
	}
	return "unknown"
}
