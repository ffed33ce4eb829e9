package dispatch

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"datacrunch-hq/relay/pkg/failure"
	"datacrunch-hq/relay/pkg/providers"
)

// OutcomeSuccess is the Outcome.Result of a successful dispatch. Failed
// dispatches use their failure category.
const OutcomeSuccess = "success"

// Outcome describes one finished dispatch.
type Outcome struct {
	RequestID string
	Provider  string
	Model     string
	Status    int
	Category  failure.Category
	Usage     providers.Usage
	Cost      decimal.Decimal
	Duration  time.Duration
	At        time.Time
}

// Result returns "success" or the failure category.
func (o Outcome) Result() string {
	if o.Category == "" {
		return OutcomeSuccess
	}
	return string(o.Category)
}

// Observer is notified after every dispatch. Implementations must not
// block; slow work belongs on a queue.
type Observer interface {
	ObserveDispatch(ctx context.Context, o Outcome)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, o Outcome)

func (f ObserverFunc) ObserveDispatch(ctx context.Context, o Outcome) { f(ctx, o) }
