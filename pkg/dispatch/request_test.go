package dispatch

import (
	"testing"

	"datacrunch-hq/relay/pkg/failure"
)

func ptr[T any](v T) *T { return &v }

func TestNewRequest_Defaults(t *testing.T) {
	req, err := NewRequest(Payload{
		Provider:          " gemini ",
		InstructionPrompt: "Translate",
		InputData:         "bonjour",
	})
	if err != nil {
		t.Fatalf("NewRequest failed: %v", err)
	}
	if req.Provider() != "gemini" || req.Model() != "" {
		t.Errorf("provider/model = %q/%q", req.Provider(), req.Model())
	}
	cfg := req.Config()
	if cfg.Temperature != 0.7 || cfg.MaxTokens != 1000 || cfg.TopP != 1.0 {
		t.Errorf("config = %+v", cfg)
	}
}

func TestNewRequest_Overrides(t *testing.T) {
	req, err := NewRequest(Payload{
		Provider:          "openai",
		InstructionPrompt: "Translate",
		InputData:         []any{"a"},
		ModelName:         "gpt-4",
		AIConfig: &ConfigOverrides{
			Temperature:     ptr(0.0),
			MaxTokens:       ptr(50),
			PresencePenalty: ptr(-1.5),
		},
	})
	if err != nil {
		t.Fatalf("NewRequest failed: %v", err)
	}
	cfg := req.Config()
	if cfg.Temperature != 0 || cfg.MaxTokens != 50 || cfg.PresencePenalty != -1.5 || cfg.TopP != 1.0 {
		t.Errorf("config = %+v", cfg)
	}
	if req.Model() != "gpt-4" {
		t.Errorf("Model = %q", req.Model())
	}
}

func TestNewRequest_Invalid(t *testing.T) {
	valid := func() Payload {
		return Payload{Provider: "gemini", InstructionPrompt: "x", InputData: "y"}
	}

	tests := []struct {
		name   string
		mutate func(*Payload)
		field  string
	}{
		{"missing provider", func(p *Payload) { p.Provider = "" }, "provider"},
		{"blank instruction", func(p *Payload) { p.InstructionPrompt = "   " }, "instruction_prompt"},
		{"missing input", func(p *Payload) { p.InputData = nil }, "input_data"},
		{"temperature too high", func(p *Payload) { p.AIConfig = &ConfigOverrides{Temperature: ptr(2.5)} }, "ai_config.temperature"},
		{"zero max tokens", func(p *Payload) { p.AIConfig = &ConfigOverrides{MaxTokens: ptr(0)} }, "ai_config.max_tokens"},
		{"top_p above one", func(p *Payload) { p.AIConfig = &ConfigOverrides{TopP: ptr(1.1)} }, "ai_config.top_p"},
		{"penalty too low", func(p *Payload) { p.AIConfig = &ConfigOverrides{FrequencyPenalty: ptr(-3.0)} }, "ai_config.frequency_penalty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid()
			tt.mutate(&p)

			_, err := NewRequest(p)
			fe, ok := failure.As(err)
			if !ok || fe.Category != failure.InvalidInput {
				t.Fatalf("expected invalid_input, got %v", err)
			}
			fields, _ := fe.Detail("fields")
			if _, ok := fields.(map[string]any)[tt.field]; !ok {
				t.Errorf("fields = %v, want entry for %q", fields, tt.field)
			}
			if StatusFor(fe.Category) != 400 {
				t.Errorf("status = %d", StatusFor(fe.Category))
			}
		})
	}
}
