package health

import (
	"encoding/json"
	"net/http"
)

// ReadinessHandler runs every check and answers 200 when all pass and 503
// otherwise, with the report as the body:
//
//	{
//	    "status": "degraded",
//	    "checks": {
//	        "ledger": {"status": "ok", "duration_ms": 0},
//	        "providers": {"status": "unhealthy", "message": "all 5 providers are blocked", "duration_ms": 0}
//	    },
//	    "timestamp": "2026-10-17T10:30:00Z"
//	}
func (c *Checker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := c.Check(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if report.Ready() {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
		}

		if r.Method != http.MethodHead {
			_ = json.NewEncoder(w).Encode(report)
		}
	}
}
