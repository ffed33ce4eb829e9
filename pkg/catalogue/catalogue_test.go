package catalogue

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestBuiltin(t *testing.T) {
	c := New()

	counts := map[string]int{}
	for _, s := range c.All() {
		counts[s.Provider]++
	}
	want := map[string]int{"gemini": 4, "openai": 4, "claude": 3, "deepseek": 2, "vertex_ai": 4}
	for p, n := range want {
		if counts[p] != n {
			t.Errorf("%s: %d models, want %d", p, counts[p], n)
		}
	}

	v, ok := c.Lookup("vertex-gemini-1.5-pro")
	if !ok {
		t.Fatal("vertex mirror missing")
	}
	if v.Provider != "vertex_ai" || v.DisplayName != "Gemini 1.5 Pro (Vertex AI)" || v.ContextWindow != 1_048_576 {
		t.Errorf("vertex mirror = %+v", v)
	}
	if !strings.HasPrefix(v.Notes, "Vertex AI version of Gemini 1.5 Pro. ") {
		t.Errorf("Notes = %q", v.Notes)
	}

	g, _ := c.Lookup("gemini-1.5-pro")
	if len(g.RecommendedFor) != 4 {
		t.Errorf("mirroring must not modify the Gemini spec: %v", g.RecommendedFor)
	}
}

func TestLookupFor(t *testing.T) {
	c := New()

	tests := []struct {
		provider, id, want string
		found              bool
	}{
		{"openai", "gpt-4", "gpt-4", true},
		{"vertex_ai", "gemini-pro", "gemini-pro", true},
		{"vertex_ai", "gemini-1.5-flash", "gemini-1.5-flash", true},
		{"vertex_ai", "vertex-gemini-pro", "vertex-gemini-pro", true},
		{"openai", "gpt-5", "", false},
		{"", "nope", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.provider+"/"+tt.id, func(t *testing.T) {
			s, ok := c.LookupFor(tt.provider, tt.id)
			if ok != tt.found || s.ID != tt.want {
				t.Errorf("LookupFor() = %q, %v; want %q, %v", s.ID, ok, tt.want, tt.found)
			}
		})
	}
}

func TestFilters(t *testing.T) {
	c := New()

	claude := c.ByProvider("claude")
	if len(claude) != 3 || claude[0].ID != "claude-3-opus-20240229" {
		t.Errorf("ByProvider(claude) = %v", claude)
	}

	for _, s := range c.ByCapability(Vision) {
		if !s.Has(Vision) {
			t.Errorf("%s lacks vision", s.ID)
		}
	}
	if len(c.ByCapability(JSONMode)) == 0 {
		t.Error("expected json_mode models")
	}

	if m, ok := DefaultModel("vertex_ai"); !ok || m != "vertex-gemini-pro" {
		t.Errorf("DefaultModel(vertex_ai) = %q, %v", m, ok)
	}
	if _, ok := DefaultModel("nope"); ok {
		t.Error("unknown provider should have no default")
	}
}

func TestValidateTokenBudget(t *testing.T) {
	c := New()

	tests := []struct {
		name       string
		id         string
		in, out    int
		ok         bool
		wantPrefix string
	}{
		{"fits", "gpt-4", 4000, 2000, true, ""},
		{"unknown", "gpt-5", 1, 1, false, "Unknown model: gpt-5"},
		{"input too large", "gpt-4", 9000, 10, false, "Input tokens (9000) exceeds model context window (8192) for GPT-4"},
		{"output too large", "gpt-4", 10, 5000, false, "Requested output tokens (5000) exceeds model limit (4096) for GPT-4"},
		{"total too large", "gpt-4", 7000, 2000, false, "Total tokens (9000) exceeds context window (8192) for GPT-4."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, msg := c.ValidateTokenBudget(tt.id, tt.in, tt.out)
			if ok != tt.ok {
				t.Errorf("ok = %v, want %v (%s)", ok, tt.ok, msg)
			}
			if !strings.HasPrefix(msg, tt.wantPrefix) {
				t.Errorf("msg = %q, want prefix %q", msg, tt.wantPrefix)
			}
		})
	}
}

func TestEstimateCost(t *testing.T) {
	c := New()

	got := c.EstimateCost("gpt-4-turbo-preview", 1000, 500)
	if !got.Equal(decimal.RequireFromString("0.025")) {
		t.Errorf("EstimateCost = %s, want 0.025", got)
	}
	if !c.EstimateCost("unknown", 1000, 1000).IsZero() {
		t.Error("unknown model should cost zero")
	}
}

func TestSummary(t *testing.T) {
	s := New().Summary()

	ds := s["deepseek"]
	if ds == nil || ds.ModelCount != 2 {
		t.Fatalf("deepseek summary = %+v", ds)
	}
	if !ds.AvgCostPer1KInput.Equal(decimal.RequireFromString("0.00014")) {
		t.Errorf("avg cost = %s", ds.AvgCostPer1KInput)
	}

	g := s["gemini"]
	if g.MinContext != 16_384 || g.MaxContext != 1_048_576 {
		t.Errorf("gemini context range = %d..%d", g.MinContext, g.MaxContext)
	}
}

func TestOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.yaml")
	write := func(content string) {
		t.Helper()
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	write(`
models:
  - model_id: gpt-4o
    provider: openai
    display_name: GPT-4o
    context_window: 128000
    max_output_tokens: 4096
    cost_per_1k_input: 0.005
    cost_per_1k_output: 0.015
  - model_id: gpt-4
    provider: openai
    display_name: GPT-4 (pinned)
    context_window: 8192
    max_output_tokens: 2048
`)

	c, err := NewWithOverlay(path)
	if err != nil {
		t.Fatalf("NewWithOverlay failed: %v", err)
	}

	added, ok := c.Lookup("gpt-4o")
	if !ok {
		t.Fatal("overlay model missing")
	}
	if !added.CostPer1KInput.Equal(decimal.RequireFromString("0.005")) {
		t.Errorf("CostPer1KInput = %s", added.CostPer1KInput)
	}
	if !added.Has(TextGeneration) {
		t.Error("overlay models default to text_generation")
	}

	replaced, _ := c.Lookup("gpt-4")
	if replaced.MaxOutputTokens != 2048 {
		t.Errorf("overlay should replace built-in entry, got %+v", replaced)
	}

	write("models:\n  - provider: openai\n")
	if err := c.Reload(); err == nil {
		t.Fatal("expected error for invalid overlay")
	}
	if _, ok := c.Lookup("gpt-4o"); !ok {
		t.Error("failed reload must keep the current table")
	}

	write("models: []\n")
	if err := c.Reload(); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Lookup("gpt-4o"); ok {
		t.Error("model removed from the overlay should disappear")
	}
	if s, _ := c.Lookup("gpt-4"); s.MaxOutputTokens != 4096 {
		t.Error("built-in entry should be restored")
	}
}
