// Package quota tracks providers that are temporarily blocked after their
// backend reported quota exhaustion.
//
// A Tracker is an explicit object owned by whoever composes the process and
// passed to the components that need it. All operations are safe for
// concurrent use. Expired blocks are cleared lazily when they are observed.
package quota

import (
	"log/slog"
	"sort"
	"sync"
	"time"
)

// DefaultBlockDuration is applied when Block is called with a zero duration.
const DefaultBlockDuration = 60 * time.Minute

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now returns f().
func (f ClockFunc) Now() time.Time { return f() }

// Observer is notified about block state transitions. Callbacks run after
// the tracker's state lock has been released but are delivered one at a
// time, in the order the transitions happened. An observer must not call
// back into the tracker.
type Observer interface {
	ProviderBlocked(provider string, until time.Time)
	ProviderUnblocked(provider string, reason UnblockReason)
}

// UnblockReason explains why a block was lifted.
type UnblockReason string

const (
	ReasonExpired UnblockReason = "expired"
	ReasonManual  UnblockReason = "manual"
	ReasonReset   UnblockReason = "reset"
)

// Record is the block state of one provider. Records are cleared, never
// removed, once a provider has been seen.
type Record struct {
	Blocked      bool
	BlockedUntil time.Time
}

// Tracker records per-provider block state.
type Tracker struct {
	mu              sync.Mutex
	notifyMu        sync.Mutex
	records         map[string]*Record
	clock           Clock
	defaultDuration time.Duration
	observers       []Observer
	logger          *slog.Logger
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock injects the time source.
func WithClock(c Clock) Option {
	return func(t *Tracker) { t.clock = c }
}

// WithDefaultDuration changes the duration used by Block(provider, 0).
func WithDefaultDuration(d time.Duration) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.defaultDuration = d
		}
	}
}

// WithObserver registers an observer for block transitions.
func WithObserver(o Observer) Option {
	return func(t *Tracker) {
		if o != nil {
			t.observers = append(t.observers, o)
		}
	}
}

// WithLogger sets the logger used for block transitions.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

// NewTracker creates an empty tracker.
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		records:         make(map[string]*Record),
		clock:           ClockFunc(time.Now),
		defaultDuration: DefaultBlockDuration,
		logger:          slog.Default().With("component", "quota.tracker"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// AddObserver registers an observer after construction.
func (t *Tracker) AddObserver(o Observer) {
	if o == nil {
		return
	}
	t.mu.Lock()
	t.observers = append(t.observers, o)
	t.mu.Unlock()
}

// IsBlocked reports whether provider is currently blocked. A block whose
// expiry has passed is cleared and reported as not blocked.
func (t *Tracker) IsBlocked(provider string) bool {
	t.mu.Lock()
	rec, ok := t.records[provider]
	if !ok || !rec.Blocked {
		t.mu.Unlock()
		return false
	}
	if t.clock.Now().Before(rec.BlockedUntil) {
		t.mu.Unlock()
		return true
	}
	rec.Blocked = false
	rec.BlockedUntil = time.Time{}
	observers := t.observers
	t.handoff()
	defer t.notifyMu.Unlock()

	t.logger.Info("provider block expired", "provider", provider)
	for _, o := range observers {
		o.ProviderUnblocked(provider, ReasonExpired)
	}
	return false
}

// Block marks provider as blocked until now+d, overwriting any existing
// block. A non-positive d uses the tracker's default duration. It returns
// the new expiry.
func (t *Tracker) Block(provider string, d time.Duration) time.Time {
	if d <= 0 {
		d = t.defaultDuration
	}

	t.mu.Lock()
	until := t.clock.Now().Add(d)
	rec, ok := t.records[provider]
	if !ok {
		rec = &Record{}
		t.records[provider] = rec
	}
	rec.Blocked = true
	rec.BlockedUntil = until
	observers := t.observers
	t.handoff()
	defer t.notifyMu.Unlock()

	t.logger.Warn("provider blocked due to quota exhaustion",
		"provider", provider,
		"blocked_until", until.UTC().Format(time.RFC3339),
		"duration", d.String(),
	)
	for _, o := range observers {
		o.ProviderBlocked(provider, until)
	}
	return until
}

// Unblock clears any block on provider. Unblocking a provider that is not
// blocked, or has never been seen, is a no-op.
func (t *Tracker) Unblock(provider string) {
	t.mu.Lock()
	rec, ok := t.records[provider]
	if !ok || !rec.Blocked {
		t.mu.Unlock()
		return
	}
	rec.Blocked = false
	rec.BlockedUntil = time.Time{}
	observers := t.observers
	t.handoff()
	defer t.notifyMu.Unlock()

	t.logger.Info("provider unblocked", "provider", provider)
	for _, o := range observers {
		o.ProviderUnblocked(provider, ReasonManual)
	}
}

// ListBlocked returns a snapshot of the currently blocked providers and
// their expiry. Blocks that have already expired are cleared and omitted.
func (t *Tracker) ListBlocked() map[string]time.Time {
	t.mu.Lock()
	now := t.clock.Now()
	blocked := make(map[string]time.Time)
	var expired []string
	for name, rec := range t.records {
		if !rec.Blocked {
			continue
		}
		if now.Before(rec.BlockedUntil) {
			blocked[name] = rec.BlockedUntil
			continue
		}
		rec.Blocked = false
		rec.BlockedUntil = time.Time{}
		expired = append(expired, name)
	}
	observers := t.observers
	t.handoff()
	defer t.notifyMu.Unlock()

	sort.Strings(expired)
	for _, name := range expired {
		t.logger.Info("provider block expired", "provider", name)
		for _, o := range observers {
			o.ProviderUnblocked(name, ReasonExpired)
		}
	}
	return blocked
}

// BlockedNames returns the sorted names of currently blocked providers.
func (t *Tracker) BlockedNames() []string {
	blocked := t.ListBlocked()
	names := make([]string, 0, len(blocked))
	for name := range blocked {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reset clears every record.
func (t *Tracker) Reset() {
	t.mu.Lock()
	var cleared []string
	for name, rec := range t.records {
		if rec.Blocked {
			cleared = append(cleared, name)
		}
	}
	t.records = make(map[string]*Record)
	observers := t.observers
	t.handoff()
	defer t.notifyMu.Unlock()

	sort.Strings(cleared)
	for _, name := range cleared {
		for _, o := range observers {
			o.ProviderUnblocked(name, ReasonReset)
		}
	}
}

// handoff trades the state lock for the notification lock. The caller must
// hold mu and must release notifyMu once its observers have run.
func (t *Tracker) handoff() {
	t.notifyMu.Lock()
	t.mu.Unlock()
}
