// Package catalogue holds model metadata: context windows, output limits,
// capabilities and pricing.
//
// The built-in table covers every model the relay knows about. An optional
// YAML overlay file can add models or replace built-in entries; Reload
// re-reads it, which is how file watching keeps the catalogue current.
//
// Overlay format:
//
//	models:
//	  - model_id: gpt-4o
//	    provider: openai
//	    display_name: GPT-4o
//	    context_window: 128000
//	    max_output_tokens: 4096
//	    capabilities: [text_generation, vision]
//	    cost_per_1k_input: 0.005
//	    cost_per_1k_output: 0.015
package catalogue

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

var thousand = decimal.NewFromInt(1000)

// Catalogue is a thread-safe model table.
type Catalogue struct {
	mu          sync.RWMutex
	specs       map[string]ModelSpec
	order       []string
	overlayPath string
}

// New returns a catalogue containing only the built-in models.
func New() *Catalogue {
	c := &Catalogue{}
	c.install(Builtin(), nil)
	return c
}

// NewWithOverlay returns a catalogue with the overlay at path applied. An
// empty path is the same as New.
func NewWithOverlay(path string) (*Catalogue, error) {
	c := &Catalogue{overlayPath: path}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// OverlayPath returns the overlay file, if any.
func (c *Catalogue) OverlayPath() string {
	return c.overlayPath
}

// Reload rebuilds the table from the built-in models and the overlay file.
// On error the current table is kept.
func (c *Catalogue) Reload() error {
	var overlay []ModelSpec
	if c.overlayPath != "" {
		var err error
		overlay, err = LoadOverlay(c.overlayPath)
		if err != nil {
			return err
		}
	}
	c.install(Builtin(), overlay)

	slog.Debug("model catalogue loaded",
		"component", "catalogue",
		"overlay", c.overlayPath,
		"overlay_models", len(overlay),
	)
	return nil
}

func (c *Catalogue) install(base, overlay []ModelSpec) {
	specs := make(map[string]ModelSpec, len(base)+len(overlay))
	order := make([]string, 0, len(base)+len(overlay))
	for _, list := range [][]ModelSpec{base, overlay} {
		for _, s := range list {
			if _, ok := specs[s.ID]; !ok {
				order = append(order, s.ID)
			}
			specs[s.ID] = s
		}
	}

	c.mu.Lock()
	c.specs = specs
	c.order = order
	c.mu.Unlock()
}

type overlayFile struct {
	Models []ModelSpec `yaml:"models"`
}

// LoadOverlay reads and checks an overlay file.
func LoadOverlay(path string) ([]ModelSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalogue overlay %q: %w", path, err)
	}

	var f overlayFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalogue overlay %q: %w", path, err)
	}

	var errs []error
	for i, s := range f.Models {
		switch {
		case s.ID == "":
			errs = append(errs, fmt.Errorf("models[%d]: model_id is required", i))
		case s.Provider == "":
			errs = append(errs, fmt.Errorf("models[%d] (%s): provider is required", i, s.ID))
		case s.ContextWindow <= 0 || s.MaxOutputTokens <= 0:
			errs = append(errs, fmt.Errorf("models[%d] (%s): context_window and max_output_tokens must be positive", i, s.ID))
		}
		if len(f.Models[i].Capabilities) == 0 {
			f.Models[i].Capabilities = []Capability{TextGeneration}
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("invalid catalogue overlay %q: %w", path, err)
	}
	return f.Models, nil
}

// Lookup returns the spec for a model id.
func (c *Catalogue) Lookup(id string) (ModelSpec, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, ok := c.specs[id]
	return s, ok
}

// LookupFor resolves id for a provider: the exact id first, then the id
// with the provider's prefix ("<provider>-<id>", or "vertex-<id>" for
// vertex_ai).
func (c *Catalogue) LookupFor(provider, id string) (ModelSpec, bool) {
	if s, ok := c.Lookup(id); ok {
		return s, true
	}
	if provider == "" {
		return ModelSpec{}, false
	}
	if s, ok := c.Lookup(provider + "-" + id); ok {
		return s, true
	}
	if provider == "vertex_ai" {
		return c.Lookup("vertex-" + id)
	}
	return ModelSpec{}, false
}

// All returns every model in catalogue order.
func (c *Catalogue) All() []ModelSpec {
	return c.filter(func(ModelSpec) bool { return true })
}

// ByProvider returns the models of one provider.
func (c *Catalogue) ByProvider(provider string) []ModelSpec {
	return c.filter(func(s ModelSpec) bool { return s.Provider == provider })
}

// ByCapability returns the models supporting capability.
func (c *Catalogue) ByCapability(capability Capability) []ModelSpec {
	return c.filter(func(s ModelSpec) bool { return s.Has(capability) })
}

func (c *Catalogue) filter(keep func(ModelSpec) bool) []ModelSpec {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []ModelSpec
	for _, id := range c.order {
		if s := c.specs[id]; keep(s) {
			out = append(out, s)
		}
	}
	return out
}

// DefaultModel returns the recommended model of a provider.
func DefaultModel(provider string) (string, bool) {
	m, ok := defaultModels[provider]
	return m, ok
}

// ValidateTokenBudget checks input and requested output token counts against
// the model's limits. It returns false and a human-readable reason when a
// limit is exceeded or the model is unknown.
func (c *Catalogue) ValidateTokenBudget(id string, inputTokens, outputTokens int) (bool, string) {
	s, ok := c.Lookup(id)
	if !ok {
		return false, fmt.Sprintf("Unknown model: %s", id)
	}

	total := inputTokens + outputTokens
	switch {
	case inputTokens > s.ContextWindow:
		return false, fmt.Sprintf("Input tokens (%d) exceeds model context window (%d) for %s",
			inputTokens, s.ContextWindow, s.DisplayName)
	case outputTokens > s.MaxOutputTokens:
		return false, fmt.Sprintf("Requested output tokens (%d) exceeds model limit (%d) for %s",
			outputTokens, s.MaxOutputTokens, s.DisplayName)
	case total > s.ContextWindow:
		return false, fmt.Sprintf("Total tokens (%d) exceeds context window (%d) for %s. Try reducing input or output token limit.",
			total, s.ContextWindow, s.DisplayName)
	}
	return true, ""
}

// EstimateCost returns the USD cost of a request. Unknown models cost zero.
func (c *Catalogue) EstimateCost(id string, inputTokens, outputTokens int) decimal.Decimal {
	s, ok := c.Lookup(id)
	if !ok {
		return decimal.Zero
	}
	in := decimal.NewFromInt(int64(inputTokens)).Div(thousand).Mul(s.CostPer1KInput)
	out := decimal.NewFromInt(int64(outputTokens)).Div(thousand).Mul(s.CostPer1KOutput)
	return in.Add(out)
}

// Summary aggregates the catalogue per provider.
func (c *Catalogue) Summary() map[string]*ProviderSummary {
	out := make(map[string]*ProviderSummary)
	for _, s := range c.All() {
		ps, ok := out[s.Provider]
		if !ok {
			ps = &ProviderSummary{MinContext: s.ContextWindow, AvgCostPer1KInput: decimal.Zero}
			out[s.Provider] = ps
		}
		ps.ModelCount++
		ps.Models = append(ps.Models, s.ID)
		ps.MinContext = min(ps.MinContext, s.ContextWindow)
		ps.MaxContext = max(ps.MaxContext, s.ContextWindow)
		ps.AvgCostPer1KInput = ps.AvgCostPer1KInput.Add(s.CostPer1KInput)
	}
	for _, ps := range out {
		ps.AvgCostPer1KInput = ps.AvgCostPer1KInput.Div(decimal.NewFromInt(int64(ps.ModelCount)))
	}
	return out
}
