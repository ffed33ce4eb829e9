package ledger

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"datacrunch-hq/relay/pkg/dispatch"
)

// RecorderConfig contains configuration for the asynchronous recorder.
type RecorderConfig struct {
	// BufferSize is the size of the async write channel buffer.
	// Default: 1000
	BufferSize int

	// WriteTimeout is the timeout for writing one entry to storage.
	// Default: 5 seconds
	WriteTimeout time.Duration
}

// DefaultRecorderConfig returns the default recorder configuration.
func DefaultRecorderConfig() *RecorderConfig {
	return &RecorderConfig{
		BufferSize:   1000,
		WriteTimeout: 5 * time.Second,
	}
}

// Recorder turns dispatch outcomes into ledger entries and writes them on a
// background goroutine so the request path never waits for SQLite. When the
// buffer is full the entry is dropped and counted.
type Recorder struct {
	storage Storage
	config  *RecorderConfig
	entries chan *Entry
	wg      sync.WaitGroup
	logger  *slog.Logger

	mu      sync.RWMutex
	closed  bool
	dropped atomic.Int64
	written atomic.Int64
}

var _ dispatch.Observer = (*Recorder)(nil)

// NewRecorder starts a recorder writing to storage.
func NewRecorder(storage Storage, config *RecorderConfig) *Recorder {
	defaults := DefaultRecorderConfig()
	if config == nil {
		config = defaults
	}
	if config.BufferSize <= 0 {
		config.BufferSize = defaults.BufferSize
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = defaults.WriteTimeout
	}

	r := &Recorder{
		storage: storage,
		config:  config,
		entries: make(chan *Entry, config.BufferSize),
		logger:  slog.Default().With("component", "ledger.recorder"),
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Debug("usage recorder started",
		"buffer_size", config.BufferSize,
		"write_timeout", config.WriteTimeout,
	)
	return r
}

// ObserveDispatch implements dispatch.Observer.
func (r *Recorder) ObserveDispatch(_ context.Context, o dispatch.Outcome) {
	if err := r.Record(NewEntry(o)); err != nil {
		r.logger.Debug("usage entry not recorded", "error", err)
	}
}

// NewEntry converts a dispatch outcome into a ledger entry with a fresh id.
func NewEntry(o dispatch.Outcome) *Entry {
	at := o.At
	if at.IsZero() {
		at = time.Now()
	}
	return &Entry{
		ID:               uuid.NewString(),
		RequestID:        o.RequestID,
		Provider:         o.Provider,
		Model:            o.Model,
		Outcome:          o.Result(),
		Status:           o.Status,
		PromptTokens:     o.Usage.PromptTokens,
		CompletionTokens: o.Usage.CompletionTokens,
		TotalTokens:      o.Usage.TotalTokens,
		Cost:             o.Cost,
		Duration:         o.Duration,
		CreatedAt:        at.UTC(),
	}
}

// Record enqueues an entry. It never blocks.
func (r *Recorder) Record(e *Entry) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return ErrClosed
	}

	select {
	case r.entries <- e:
		return nil
	default:
		r.dropped.Add(1)
		r.logger.Warn("usage recorder buffer full, dropping entry",
			"provider", e.Provider,
			"request_id", e.RequestID,
		)
		return nil
	}
}

func (r *Recorder) worker() {
	defer r.wg.Done()

	for e := range r.entries {
		ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
		err := r.storage.Store(ctx, e)
		cancel()

		if err != nil {
			r.logger.Error("failed to write usage entry",
				"entry_id", e.ID,
				"provider", e.Provider,
				"error", err,
			)
			continue
		}
		r.written.Add(1)
	}
}

// Close stops accepting entries and waits until the queue is drained.
func (r *Recorder) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.entries)
	r.mu.Unlock()

	r.wg.Wait()
	r.logger.Info("usage recorder stopped",
		"written", r.written.Load(),
		"dropped", r.dropped.Load(),
	)
	return nil
}

// Dropped returns how many entries were discarded because the buffer was full.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

// Written returns how many entries reached storage.
func (r *Recorder) Written() int64 {
	return r.written.Load()
}
