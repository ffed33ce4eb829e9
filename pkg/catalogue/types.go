package catalogue

import "github.com/shopspring/decimal"

// Capability is a feature a model supports.
type Capability string

const (
	TextGeneration  Capability = "text_generation"
	CodeGeneration  Capability = "code_generation"
	Vision          Capability = "vision"
	FunctionCalling Capability = "function_calling"
	JSONMode        Capability = "json_mode"
	Streaming       Capability = "streaming"
)

// ModelSpec describes one model.
type ModelSpec struct {
	ID                    string          `json:"model_id" yaml:"model_id"`
	Provider              string          `json:"provider" yaml:"provider"`
	DisplayName           string          `json:"display_name" yaml:"display_name"`
	ContextWindow         int             `json:"context_window" yaml:"context_window"`
	MaxOutputTokens       int             `json:"max_output_tokens" yaml:"max_output_tokens"`
	SupportsSystemMessage bool            `json:"supports_system_message" yaml:"supports_system_message"`
	Capabilities          []Capability    `json:"capabilities" yaml:"capabilities"`
	CostPer1KInput        decimal.Decimal `json:"cost_per_1k_input" yaml:"cost_per_1k_input"`
	CostPer1KOutput       decimal.Decimal `json:"cost_per_1k_output" yaml:"cost_per_1k_output"`
	RecommendedFor        []string        `json:"recommended_for" yaml:"recommended_for"`
	Notes                 string          `json:"notes" yaml:"notes"`
}

// Has reports whether the model supports c.
func (s ModelSpec) Has(c Capability) bool {
	for _, have := range s.Capabilities {
		if have == c {
			return true
		}
	}
	return false
}

// ProviderSummary aggregates the models of one provider.
type ProviderSummary struct {
	ModelCount        int             `json:"model_count"`
	Models            []string        `json:"models"`
	MinContext        int             `json:"min_context"`
	MaxContext        int             `json:"max_context"`
	AvgCostPer1KInput decimal.Decimal `json:"avg_cost_per_1k_input"`
}
