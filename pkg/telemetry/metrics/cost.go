package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// CostMetrics tracks estimated spend.
//
// Metrics:
//   - relay_cost_usd_total: estimated cost in USD by provider and model
//   - relay_cost_per_request_usd: cost distribution per request
type CostMetrics struct {
	costTotal      *prometheus.CounterVec
	costPerRequest *prometheus.HistogramVec
}

// NewCostMetrics creates and registers cost metrics with the provided registry.
func NewCostMetrics(namespace string, registry *prometheus.Registry) *CostMetrics {
	cm := &CostMetrics{
		costTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cost_usd_total",
				Help:      "Estimated cost in USD by provider and model",
			},
			[]string{"provider", "model"},
		),

		costPerRequest: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "cost_per_request_usd",
				Help:      "Estimated cost distribution per request in USD",
				// $0.0001 to $10
				Buckets: []float64{0.0001, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 10.0},
			},
			[]string{"provider", "model"},
		),
	}

	registry.MustRegister(
		cm.costTotal,
		cm.costPerRequest,
	)

	return cm
}

// RecordRequestCost records the cost of a single request. Zero costs, i.e.
// models missing from the catalogue, are skipped.
func (cm *CostMetrics) RecordRequestCost(provider, model string, cost decimal.Decimal) {
	if !cost.IsPositive() {
		return
	}

	usd := cost.InexactFloat64()
	cm.costTotal.WithLabelValues(provider, model).Add(usd)
	cm.costPerRequest.WithLabelValues(provider, model).Observe(usd)
}
