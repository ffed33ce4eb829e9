package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"datacrunch-hq/relay/pkg/failure"
	"datacrunch-hq/relay/pkg/ledger"
	"datacrunch-hq/relay/pkg/proxy"
)

// UsageResponse is the body of GET /api/v1/ai/usage.
type UsageResponse struct {
	Since     *time.Time             `json:"since,omitempty"`
	Providers []ledger.ProviderUsage `json:"providers"`
	TotalCost decimal.Decimal        `json:"total_cost_usd"`
}

// UsageHandler reports ledger totals per provider. ?since= accepts an
// RFC 3339 timestamp or a duration such as 24h counted back from now.
type UsageHandler struct {
	// Ledger is nil when the ledger is disabled.
	Ledger UsageReporter

	now func() time.Time
}

// NewUsageHandler creates a usage handler; a nil reporter answers 503.
func NewUsageHandler(reporter UsageReporter) *UsageHandler {
	return &UsageHandler{Ledger: reporter, now: time.Now}
}

func (h *UsageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Ledger == nil {
		proxy.WriteError(w, r, proxy.Unavailable("Usage ledger"))
		return
	}

	now := time.Now
	if h.now != nil {
		now = h.now
	}

	since, err := ParseSince(r.URL.Query().Get("since"), now())
	if err != nil {
		proxy.WriteError(w, r, failure.InvalidInputError(err.Error(),
			failure.WithDetail("since", r.URL.Query().Get("since"))))
		return
	}

	usage, err := h.Ledger.Summary(r.Context(), since)
	if err != nil {
		proxy.WriteError(w, r, err)
		return
	}
	if usage == nil {
		usage = []ledger.ProviderUsage{}
	}

	resp := UsageResponse{Providers: usage, TotalCost: decimal.Zero}
	if !since.IsZero() {
		resp.Since = &since
	}
	for _, u := range usage {
		resp.TotalCost = resp.TotalCost.Add(u.Cost)
	}
	proxy.WriteOK(w, r, resp)
}

// ParseSince interprets a since value relative to now. An empty value
// returns the zero time.
func ParseSince(v string, now time.Time) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, nil
	}
	if d, err := time.ParseDuration(v); err == nil {
		if d < 0 {
			return time.Time{}, fmt.Errorf("since duration must not be negative: %s", v)
		}
		return now.Add(-d).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("since must be an RFC 3339 timestamp or a duration: %s", v)
	}
	return t.UTC(), nil
}
