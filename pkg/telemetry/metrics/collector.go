package metrics

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"datacrunch-hq/relay/pkg/config"
	"datacrunch-hq/relay/pkg/dispatch"
	"datacrunch-hq/relay/pkg/providers"
	"datacrunch-hq/relay/pkg/quota"
)

// unknownLabel replaces provider names outside the supported set and models
// past the cardinality limit.
const (
	unknownLabel = "unknown"
	otherLabel   = "other"
)

// Collector owns every relay metric. It observes dispatch outcomes and quota
// block transitions, and records HTTP traffic for the middleware.
type Collector struct {
	enabled  bool
	registry *prometheus.Registry

	dispatchMetrics *DispatchMetrics
	providerMetrics *ProviderMetrics
	costMetrics     *CostMetrics
	httpMetrics     *HTTPMetrics

	cardinalityLimiter *CardinalityLimiter
}

var (
	_ dispatch.Observer = (*Collector)(nil)
	_ quota.Observer    = (*Collector)(nil)
)

// NewCollector creates a collector registered on registry. A nil registry
// gets a fresh one with the Go runtime and process collectors attached.
//
// Example:
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	tracker.AddObserver(collector)
//	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	namespace := cfg.Namespace
	if namespace == "" {
		namespace = config.DefaultMetricsNamespace
	}

	c := &Collector{
		enabled:            cfg.Enabled,
		registry:           registry,
		cardinalityLimiter: NewCardinalityLimiter(1000),
	}
	c.dispatchMetrics = NewDispatchMetrics(namespace, registry)
	c.providerMetrics = NewProviderMetrics(namespace, registry)
	c.costMetrics = NewCostMetrics(namespace, registry)
	c.httpMetrics = NewHTTPMetrics(namespace, registry)

	for _, p := range providers.Names {
		c.providerMetrics.SetBlocked(p, false)
	}

	return c
}

// ObserveDispatch records one dispatch outcome.
func (c *Collector) ObserveDispatch(_ context.Context, o dispatch.Outcome) {
	if !c.enabled {
		return
	}

	provider := providerLabel(o.Provider)
	model := o.Model
	if model == "" {
		model = "default"
	}
	if !c.cardinalityLimiter.Allow(fmt.Sprintf("%s:%s", provider, model)) {
		model = otherLabel
	}

	c.dispatchMetrics.RecordRequest(provider, model, o.Result(), o.Duration)
	if o.Category != "" {
		c.providerMetrics.RecordError(provider, string(o.Category))
		return
	}
	c.dispatchMetrics.RecordTokens(provider, model, o.Usage.PromptTokens, o.Usage.CompletionTokens)
	c.costMetrics.RecordRequestCost(provider, model, o.Cost)
}

// ProviderBlocked implements quota.Observer.
func (c *Collector) ProviderBlocked(provider string, until time.Time) {
	if !c.enabled {
		return
	}
	p := providerLabel(provider)
	c.providerMetrics.SetBlocked(p, true)
	c.providerMetrics.RecordBlock(p, until)
}

// ProviderUnblocked implements quota.Observer.
func (c *Collector) ProviderUnblocked(provider string, reason quota.UnblockReason) {
	if !c.enabled {
		return
	}
	p := providerLabel(provider)
	c.providerMetrics.SetBlocked(p, false)
	c.providerMetrics.RecordUnblock(p, string(reason))
}

// RecordHTTPRequest records one served HTTP request. route is the mux
// pattern, not the raw path.
func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if !c.enabled {
		return
	}
	if route == "" {
		route = otherLabel
	}
	c.httpMetrics.Record(method, route, strconv.Itoa(status), duration)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Enabled reports whether recording is on.
func (c *Collector) Enabled() bool {
	return c.enabled
}

func providerLabel(provider string) string {
	if slices.Contains(providers.Names, provider) {
		return provider
	}
	return unknownLabel
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label combinations per metric.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether labelSet is already known or still fits under the
// limit.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	// Double-check after acquiring write lock
	if _, exists := cl.current[labelSet]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
