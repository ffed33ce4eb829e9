package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"datacrunch-hq/relay/pkg/catalogue"
	"datacrunch-hq/relay/pkg/config"
	"datacrunch-hq/relay/pkg/dispatch"
	"datacrunch-hq/relay/pkg/providerfactory"
	"datacrunch-hq/relay/pkg/providers"
	"datacrunch-hq/relay/pkg/prompts"
	"datacrunch-hq/relay/pkg/quota"
	"datacrunch-hq/relay/pkg/telemetry/health"
	"datacrunch-hq/relay/pkg/telemetry/metrics"
)

type echoAdapter struct{ name string }

func (e echoAdapter) Name() string { return e.name }

func (e echoAdapter) Invoke(_ context.Context, instruction string, _ any, _ providers.GenerationConfig, model string) (*providers.Response, error) {
	if instruction == "panic" {
		panic("adapter exploded")
	}
	return providers.NewResponse(e.name, "echo: "+instruction, "gpt-4", providers.NewUsage(3, 4, 0)), nil
}

func testServer(t *testing.T, withMetrics bool) (*Server, *metrics.Collector) {
	t.Helper()

	reg := providerfactory.NewRegistry()
	reg.Register("openai", func(context.Context) (providers.Adapter, error) { return echoAdapter{name: "openai"}, nil })

	var collector *metrics.Collector
	opts := []dispatch.Option{dispatch.WithCatalogue(catalogue.New())}
	if withMetrics {
		collector = metrics.NewCollector(&config.MetricsConfig{Enabled: true, Namespace: "relay"}, prometheus.NewRegistry())
		opts = append(opts, dispatch.WithObserver(collector))
	}

	cfg := config.NewDefault()
	srv := NewServer(&cfg.Server, "/metrics", Dependencies{
		Dispatcher: dispatch.New(reg, quota.NewTracker(), opts...),
		Catalogue:  catalogue.New(),
		Templates:  prompts.NewStore(),
		Metrics:    collector,
		Version:    "test",
	})
	return srv, collector
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, path, r))
	return w
}

func TestRoutes(t *testing.T) {
	srv, _ := testServer(t, false)
	h := srv.Handler()

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantBody   string
	}{
		{"root", http.MethodGet, "/", "", http.StatusOK, `"status":"operational"`},
		{"health", http.MethodGet, "/health", "", http.StatusOK, `"status":"healthy"`},
		{"providers", http.MethodGet, "/api/v1/ai/providers", "", http.StatusOK, `"providers":["openai"]`},
		{"status", http.MethodGet, "/api/v1/ai/status", "", http.StatusOK, `"available_providers":["openai"]`},
		{"templates", http.MethodGet, "/api/v1/ai/prompt-templates", "", http.StatusOK, `"data_analysis"`},
		{"models", http.MethodGet, "/api/v1/ai/models?provider=deepseek", "", http.StatusOK, `"deepseek-chat"`},
		{"model", http.MethodGet, "/api/v1/ai/models/gpt-4", "", http.StatusOK, `"display_name":"GPT-4"`},
		{"unblock", http.MethodPost, "/api/v1/ai/unblock/openai", "", http.StatusOK, `"Provider openai has been unblocked"`},
		{"usage disabled", http.MethodGet, "/api/v1/ai/usage", "", http.StatusServiceUnavailable, `"error_type":"invalid_config"`},
		{
			"process", http.MethodPost, "/api/v1/ai/process",
			`{"provider":"openai","instruction_prompt":"hi","input_data":{"x":1}}`,
			http.StatusOK, `"content":"echo: hi"`,
		},
		{"wrong method", http.MethodGet, "/api/v1/ai/process", "", http.StatusMethodNotAllowed, ""},
		{"unknown path", http.MethodGet, "/api/v2/nothing", "", http.StatusNotFound, ""},
		{"metrics not routed", http.MethodGet, "/metrics", "", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, tt.method, tt.path, tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d, body %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantBody != "" && !strings.Contains(w.Body.String(), tt.wantBody) {
				t.Errorf("body %s does not contain %s", w.Body.String(), tt.wantBody)
			}
			if w.Header().Get("X-Request-ID") == "" {
				t.Error("every response should carry X-Request-ID")
			}
		})
	}
}

func TestRoutes_PanicRecovered(t *testing.T) {
	srv, _ := testServer(t, false)

	w := do(t, srv.Handler(), http.MethodPost, "/api/v1/ai/process",
		`{"provider":"openai","instruction_prompt":"panic","input_data":1}`)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["error_type"] != "processing_error" {
		t.Errorf("body = %v", body)
	}
}

func TestRoutes_Metrics(t *testing.T) {
	srv, collector := testServer(t, true)
	h := srv.Handler()

	do(t, h, http.MethodPost, "/api/v1/ai/process", `{"provider":"openai","instruction_prompt":"hi","input_data":1}`)
	do(t, h, http.MethodGet, "/api/v1/ai/models/gpt-4", "")

	w := do(t, h, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", w.Code)
	}
	for _, want := range []string{"relay_requests_total", "relay_http_requests_total"} {
		if !strings.Contains(w.Body.String(), want) {
			t.Errorf("metrics output missing %s", want)
		}
	}

	if n := testutil.CollectAndCount(collector.Registry(), "relay_http_requests_total"); n < 2 {
		t.Errorf("http request series = %d, want at least 2", n)
	}
}

func TestRoutes_Readiness(t *testing.T) {
	reg := providerfactory.NewRegistry()
	reg.Register("openai", func(context.Context) (providers.Adapter, error) { return echoAdapter{name: "openai"}, nil })

	tracker := quota.NewTracker()
	dispatcher := dispatch.New(reg, tracker)
	checker := health.New(time.Second)
	checker.Register("providers", dispatcher.CheckAvailable)

	cfg := config.NewDefault()
	h := NewServer(&cfg.Server, "/metrics", Dependencies{
		Dispatcher: dispatcher,
		Catalogue:  catalogue.New(),
		Templates:  prompts.NewStore(),
		Health:     checker,
		Version:    "test",
	}).Handler()

	w := do(t, h, http.MethodGet, "/ready", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"status":"ready"`) {
		t.Fatalf("ready: status = %d, body %s", w.Code, w.Body.String())
	}

	tracker.Block("openai", time.Hour)

	w = do(t, h, http.MethodGet, "/ready", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
	if !strings.Contains(w.Body.String(), "all 1 providers are blocked") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestRoutes_ReadyUnregistered(t *testing.T) {
	srv, _ := testServer(t, false)
	if w := do(t, srv.Handler(), http.MethodGet, "/ready", ""); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 without a checker", w.Code)
	}
}

func TestServer_Lifecycle(t *testing.T) {
	srv, _ := testServer(t, false)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	url := fmt.Sprintf("http://%s/health", ln.Addr().String())
	var resp *http.Response
	for i := 0; i < 50; i++ {
		resp, err = http.Get(url)
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("server never answered: %v", err)
	}
	resp.Body.Close()

	if !srv.IsRunning() {
		t.Error("IsRunning should be true while serving")
	}
	if srv.Addr() == nil {
		t.Error("Addr should be set while serving")
	}

	if err := srv.Serve(ctx, ln); err == nil {
		t.Error("second Serve should fail")
	}

	srv.Stop()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}

	if srv.IsRunning() {
		t.Error("IsRunning should be false after shutdown")
	}
}
