package cli

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"datacrunch-hq/relay/pkg/failure"
)

func TestClient(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/ai/status", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"providers":["gemini"],"blocked_providers":{},"available_providers":["gemini"]}`))
	})
	mux.HandleFunc("POST /api/v1/ai/unblock/{provider}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(failure.New(failure.InvalidProvider, "Unsupported AI provider: "+r.PathValue("provider")))
	})
	mux.HandleFunc("GET /broken", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream gone", http.StatusBadGateway)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	c := NewClient(strings.TrimPrefix(ts.URL, "http://"), 5*time.Second)
	ctx := context.Background()

	t.Run("decodes success", func(t *testing.T) {
		var status struct {
			Providers []string `json:"providers"`
		}
		if err := c.Get(ctx, "/api/v1/ai/status", &status); err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if len(status.Providers) != 1 || status.Providers[0] != "gemini" {
			t.Errorf("status = %+v", status)
		}
	})

	t.Run("decodes failure body", func(t *testing.T) {
		err := c.Post(ctx, "/api/v1/ai/unblock/mistral", nil)
		fe, ok := failure.As(err)
		if !ok {
			t.Fatalf("expected *failure.Error, got %v", err)
		}
		if fe.Category != failure.InvalidProvider || !strings.Contains(fe.Message, "mistral") {
			t.Errorf("failure = %+v", fe)
		}
	})

	t.Run("non-json error", func(t *testing.T) {
		err := c.Get(ctx, "/broken", nil)
		if err == nil || !strings.Contains(err.Error(), "502") {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("unreachable", func(t *testing.T) {
		dead := NewClient("http://127.0.0.1:1", time.Second)
		if err := dead.Get(ctx, "/health", nil); err == nil {
			t.Error("expected connection error")
		}
	})
}
