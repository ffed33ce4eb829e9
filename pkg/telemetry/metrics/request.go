package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DispatchMetrics tracks dispatched generation requests.
//
// Metrics:
//   - relay_requests_total: requests by provider, model and outcome
//   - relay_request_duration_seconds: dispatch latency by provider
//   - relay_request_tokens_total: tokens by provider, model and type
type DispatchMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	tokensTotal     *prometheus.CounterVec
}

// NewDispatchMetrics creates and registers dispatch metrics with the provided registry.
func NewDispatchMetrics(namespace string, registry *prometheus.Registry) *DispatchMetrics {
	dm := &DispatchMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of dispatched requests by outcome",
			},
			[]string{"provider", "model", "outcome"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "Duration of dispatched requests in seconds",
				// LLM latencies, 100ms to 2m
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"provider"},
		),

		tokensTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "request_tokens_total",
				Help:      "Total number of tokens reported by backends",
			},
			[]string{"provider", "model", "type"},
		),
	}

	registry.MustRegister(
		dm.requestsTotal,
		dm.requestDuration,
		dm.tokensTotal,
	)

	return dm
}

// RecordRequest counts one request and observes its duration. outcome is
// "success" or the failure category.
func (dm *DispatchMetrics) RecordRequest(provider, model, outcome string, duration time.Duration) {
	dm.requestsTotal.WithLabelValues(provider, model, outcome).Inc()
	dm.requestDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordTokens records prompt and completion token counts.
func (dm *DispatchMetrics) RecordTokens(provider, model string, promptTokens, completionTokens int) {
	if promptTokens > 0 {
		dm.tokensTotal.WithLabelValues(provider, model, "prompt").Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		dm.tokensTotal.WithLabelValues(provider, model, "completion").Add(float64(completionTokens))
	}
}
