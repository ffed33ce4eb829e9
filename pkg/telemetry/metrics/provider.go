package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ProviderMetrics tracks provider availability and failures.
//
// Metrics:
//   - relay_provider_blocked: 1 while a provider is blocked for quota
//   - relay_provider_blocked_until_seconds: unix time the current block ends
//   - relay_provider_blocks_total: quota blocks applied
//   - relay_provider_unblocks_total: blocks lifted, by reason
//   - relay_provider_errors_total: failed dispatches by category
type ProviderMetrics struct {
	blocked      *prometheus.GaugeVec
	blockedUntil *prometheus.GaugeVec
	blocks       *prometheus.CounterVec
	unblocks     *prometheus.CounterVec
	errors       *prometheus.CounterVec
}

// NewProviderMetrics creates and registers provider metrics with the provided registry.
func NewProviderMetrics(namespace string, registry *prometheus.Registry) *ProviderMetrics {
	pm := &ProviderMetrics{
		blocked: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "provider_blocked",
				Help:      "Whether a provider is blocked after quota exhaustion (1=blocked, 0=available)",
			},
			[]string{"provider"},
		),

		blockedUntil: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "provider_blocked_until_seconds",
				Help:      "Unix time at which the current provider block expires",
			},
			[]string{"provider"},
		),

		blocks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_blocks_total",
				Help:      "Total number of quota blocks applied to each provider",
			},
			[]string{"provider"},
		),

		unblocks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_unblocks_total",
				Help:      "Total number of provider blocks lifted, by reason",
			},
			[]string{"provider", "reason"},
		),

		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_errors_total",
				Help:      "Total number of failed dispatches by error type",
			},
			[]string{"provider", "error_type"},
		),
	}

	registry.MustRegister(
		pm.blocked,
		pm.blockedUntil,
		pm.blocks,
		pm.unblocks,
		pm.errors,
	)

	return pm
}

// SetBlocked updates the blocked gauge of a provider.
func (pm *ProviderMetrics) SetBlocked(provider string, blocked bool) {
	value := 0.0
	if blocked {
		value = 1.0
	} else {
		pm.blockedUntil.WithLabelValues(provider).Set(0)
	}
	pm.blocked.WithLabelValues(provider).Set(value)
}

// RecordBlock counts a block and records its expiry.
func (pm *ProviderMetrics) RecordBlock(provider string, until time.Time) {
	pm.blocks.WithLabelValues(provider).Inc()
	pm.blockedUntil.WithLabelValues(provider).Set(float64(until.Unix()))
}

// RecordUnblock counts a lifted block.
func (pm *ProviderMetrics) RecordUnblock(provider, reason string) {
	pm.unblocks.WithLabelValues(provider, reason).Inc()
}

// RecordError records a failed dispatch.
//
// errorType is the failure category, e.g. "quota_exceeded", "api_timeout"
// or "invalid_response".
func (pm *ProviderMetrics) RecordError(provider, errorType string) {
	pm.errors.WithLabelValues(provider, errorType).Inc()
}
