package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"datacrunch-hq/relay/pkg/catalogue"
	"datacrunch-hq/relay/pkg/failure"
	"datacrunch-hq/relay/pkg/providerfactory"
	"datacrunch-hq/relay/pkg/providers"
	"datacrunch-hq/relay/pkg/quota"
	"datacrunch-hq/relay/pkg/telemetry/logging"
	"datacrunch-hq/relay/pkg/telemetry/tracing"
)

// Orchestrator routes requests to provider adapters.
type Orchestrator struct {
	registry      *providerfactory.Registry
	tracker       *quota.Tracker
	catalogue     *catalogue.Catalogue
	observers     []Observer
	tracer        *tracing.Tracer
	blockDuration time.Duration
	logger        *slog.Logger
	now           func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithCatalogue enables token budget checks and cost estimation.
func WithCatalogue(c *catalogue.Catalogue) Option {
	return func(o *Orchestrator) { o.catalogue = c }
}

// WithObserver registers an outcome observer.
func WithObserver(obs Observer) Option {
	return func(o *Orchestrator) {
		if obs != nil {
			o.observers = append(o.observers, obs)
		}
	}
}

// WithTracer opens a "dispatch" span per request.
func WithTracer(t *tracing.Tracer) Option {
	return func(o *Orchestrator) { o.tracer = t }
}

// WithBlockDuration sets how long a provider is blocked after a quota
// failure. Zero uses the tracker's default.
func WithBlockDuration(d time.Duration) Option {
	return func(o *Orchestrator) { o.blockDuration = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock overrides time.Now for outcome timestamps and durations.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// New creates an orchestrator.
func New(registry *providerfactory.Registry, tracker *quota.Tracker, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		registry: registry,
		tracker:  tracker,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.With("component", "dispatch")
	return o
}

// Tracker returns the quota tracker shared with the adapters.
func (o *Orchestrator) Tracker() *quota.Tracker {
	return o.tracker
}

// Process dispatches req. On failure the returned error is a *Error
// carrying the HTTP status and the structured failure; it never returns an
// unclassified error.
func (o *Orchestrator) Process(ctx context.Context, req *Request) (*providers.Response, error) {
	start := o.now()
	provider := req.Provider()
	ctx = logging.WithProvider(ctx, provider)
	if m := req.Model(); m != "" {
		ctx = logging.WithModel(ctx, m)
	}

	ctx, span := o.tracer.Start(ctx, "dispatch")
	defer span.End()

	resp, derr := o.process(ctx, req)

	outcome := Outcome{
		RequestID: logging.GetRequestID(ctx),
		Provider:  provider,
		Model:     req.Model(),
		Status:    http.StatusOK,
		Cost:      decimal.Zero,
		At:        start,
	}
	if derr != nil {
		outcome.Status = derr.Status
		outcome.Category = derr.Failure.Category
	} else {
		outcome.Model = resp.Model
		outcome.Usage = resp.Usage
		if o.catalogue != nil {
			if spec, ok := o.catalogue.LookupFor(provider, resp.Model); ok {
				outcome.Cost = o.catalogue.EstimateCost(spec.ID, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
			}
		}
	}
	outcome.Duration = o.now().Sub(start)
	o.notify(ctx, outcome)

	tracing.SetProviderAttributes(span, provider, outcome.Model)
	if derr != nil {
		tracing.SetFailure(span, string(derr.Failure.Category), derr.Failure.Message, derr.Failure.Retryable)
	} else {
		tracing.SetUsageAttributes(span, outcome.Usage.PromptTokens, outcome.Usage.CompletionTokens,
			outcome.Usage.TotalTokens, outcome.Cost.String())
	}

	if derr != nil {
		level := slog.LevelWarn
		if derr.Status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		o.logger.Log(ctx, level, "dispatch failed",
			"status", derr.Status,
			"error_type", derr.Failure.Category,
			"error", derr.Failure.Message,
			"duration_ms", outcome.Duration.Milliseconds(),
		)
		return nil, derr
	}

	o.logger.InfoContext(ctx, "dispatch completed",
		"resolved_model", resp.Model,
		"total_tokens", resp.Usage.TotalTokens,
		"duration_ms", outcome.Duration.Milliseconds(),
	)
	return resp, nil
}

func (o *Orchestrator) process(ctx context.Context, req *Request) (*providers.Response, *Error) {
	provider := req.Provider()

	construct, ok := o.registry.Lookup(provider)
	if !ok {
		return nil, &Error{
			Status: http.StatusBadRequest,
			Failure: failure.New(failure.InvalidProvider,
				fmt.Sprintf("Unsupported AI provider: %s", provider),
				failure.WithProvider(provider),
				failure.WithDetail("supported_providers", o.registry.Names())),
		}
	}

	if o.tracker.IsBlocked(provider) {
		return nil, &Error{
			Status: http.StatusTooManyRequests,
			Failure: failure.QuotaExceededError(provider,
				fmt.Sprintf("Provider %s is currently blocked due to quota exceeded. Please try again later.", provider),
				failure.WithDetail("blocked_providers", o.blockedSnapshot())),
		}
	}

	if derr := o.checkBudget(req); derr != nil {
		return nil, derr
	}

	adapter, err := construct(ctx)
	if err != nil {
		if fe, ok := failure.As(err); ok {
			return nil, &Error{Status: constructionStatus(fe.Category), Failure: fe}
		}
		return nil, &Error{
			Status: http.StatusInternalServerError,
			Failure: failure.New(failure.AdapterInitializationError,
				fmt.Sprintf("Failed to initialize %s adapter: %v", provider, err),
				failure.WithProvider(provider),
				failure.WithCause(err)),
		}
	}

	resp, err := adapter.Invoke(ctx, req.Instruction(), req.Input(), req.Config(), req.Model())
	if err != nil {
		fe, ok := failure.As(err)
		if !ok {
			fe = failure.New(failure.ProcessingError,
				fmt.Sprintf("Unexpected error during AI processing: %v", err),
				failure.WithProvider(provider),
				failure.WithRetryable(false),
				failure.WithCause(err))
		}
		if fe.Category == failure.QuotaExceeded && !o.tracker.IsBlocked(provider) {
			until := o.tracker.Block(provider, o.blockDuration)
			o.logger.WarnContext(ctx, "provider blocked after quota failure", "blocked_until", until)
		}
		return nil, &Error{Status: StatusFor(fe.Category), Failure: fe}
	}
	return resp, nil
}

// checkBudget rejects an explicit max_tokens above a known model's output
// limit.
func (o *Orchestrator) checkBudget(req *Request) *Error {
	maxTokens := req.Config().MaxTokens
	if o.catalogue == nil || req.Model() == "" || maxTokens <= 0 {
		return nil
	}
	spec, ok := o.catalogue.LookupFor(req.Provider(), req.Model())
	if !ok {
		return nil
	}
	if ok, reason := o.catalogue.ValidateTokenBudget(spec.ID, 0, maxTokens); !ok {
		return &Error{
			Status: http.StatusBadRequest,
			Failure: failure.New(failure.InvalidConfig, reason,
				failure.WithProvider(req.Provider()),
				failure.WithDetail("model", spec.ID),
				failure.WithDetail("max_output_tokens", spec.MaxOutputTokens)),
		}
	}
	return nil
}

func (o *Orchestrator) notify(ctx context.Context, outcome Outcome) {
	for _, obs := range o.observers {
		obs.ObserveDispatch(ctx, outcome)
	}
}

// blockedSnapshot formats the currently blocked providers with their
// expiry times.
func (o *Orchestrator) blockedSnapshot() map[string]string {
	blocked := o.tracker.ListBlocked()
	out := make(map[string]string, len(blocked))
	for p, until := range blocked {
		out[p] = until.UTC().Format(time.RFC3339Nano)
	}
	return out
}

// SupportedProviders returns the registered provider names.
func (o *Orchestrator) SupportedProviders() []string {
	return o.registry.Names()
}

// Status is the availability of every provider.
type Status struct {
	Providers          []string          `json:"providers"`
	BlockedProviders   map[string]string `json:"blocked_providers"`
	AvailableProviders []string          `json:"available_providers"`
}

// ProviderStatus combines the registered providers with the current
// blocks.
func (o *Orchestrator) ProviderStatus() Status {
	names := o.registry.Names()
	blocked := o.blockedSnapshot()

	available := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := blocked[n]; !ok {
			available = append(available, n)
		}
	}
	return Status{
		Providers:          names,
		BlockedProviders:   blocked,
		AvailableProviders: slices.Clip(available),
	}
}

// CheckAvailable fails when no registered provider can take a request,
// because none are registered or every one is quota-blocked. It backs the
// readiness probe.
func (o *Orchestrator) CheckAvailable(context.Context) error {
	st := o.ProviderStatus()
	switch {
	case len(st.Providers) == 0:
		return errors.New("no providers registered")
	case len(st.AvailableProviders) == 0:
		return fmt.Errorf("all %d providers are blocked", len(st.Providers))
	}
	return nil
}

// Unblock lifts a provider's block. It reports false for unknown providers.
func (o *Orchestrator) Unblock(provider string) bool {
	if !o.registry.Has(provider) {
		return false
	}
	o.tracker.Unblock(provider)
	return true
}
