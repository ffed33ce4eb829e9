package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Entry is one recorded dispatch.
type Entry struct {
	ID               string          `json:"id"`
	RequestID        string          `json:"request_id,omitempty"`
	Provider         string          `json:"provider"`
	Model            string          `json:"model,omitempty"`
	Outcome          string          `json:"outcome"`
	Status           int             `json:"status"`
	PromptTokens     int             `json:"prompt_tokens"`
	CompletionTokens int             `json:"completion_tokens"`
	TotalTokens      int             `json:"total_tokens"`
	Cost             decimal.Decimal `json:"cost_usd"`
	Duration         time.Duration   `json:"duration_ns"`
	CreatedAt        time.Time       `json:"created_at"`
}

// Succeeded reports whether the dispatch returned a response.
func (e *Entry) Succeeded() bool {
	return e.Outcome == "success"
}

// Query filters entries. Zero fields match everything.
type Query struct {
	Provider string
	Outcome  string
	Since    time.Time
	Until    time.Time

	// Limit caps the result size. Results are newest first.
	Limit int
}

// ProviderUsage aggregates the entries of one provider.
type ProviderUsage struct {
	Provider         string          `json:"provider"`
	Requests         int64           `json:"requests"`
	Successes        int64           `json:"successes"`
	Failures         int64           `json:"failures"`
	PromptTokens     int64           `json:"prompt_tokens"`
	CompletionTokens int64           `json:"completion_tokens"`
	TotalTokens      int64           `json:"total_tokens"`
	Cost             decimal.Decimal `json:"cost_usd"`
}

// Storage persists ledger entries.
type Storage interface {
	// Store writes a single entry.
	Store(ctx context.Context, e *Entry) error

	// Query returns matching entries, newest first.
	Query(ctx context.Context, q *Query) ([]*Entry, error)

	// Count returns the number of matching entries, ignoring q.Limit.
	Count(ctx context.Context, q *Query) (int64, error)

	// Summary aggregates entries created at or after since, per provider and
	// ordered by provider name. A zero since covers every entry.
	Summary(ctx context.Context, since time.Time) ([]ProviderUsage, error)

	// Recent returns the newest limit entries.
	Recent(ctx context.Context, limit int) ([]*Entry, error)

	// Prune removes entries created before t and returns how many were
	// removed.
	Prune(ctx context.Context, t time.Time) (int64, error)

	// Close releases the underlying database.
	Close() error
}
