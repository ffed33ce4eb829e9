package providers

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"datacrunch-hq/relay/pkg/failure"
)

// ValidateConfig checks the sampling parameters shared by every backend.
// It runs before any network call and reports violations as invalid_input.
func ValidateConfig(provider string, cfg GenerationConfig) error {
	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		return failure.InvalidInputError(
			fmt.Sprintf("Invalid temperature: %v. Must be between 0.0 and 2.0", cfg.Temperature),
			failure.WithProvider(provider),
			failure.WithDetail("field", "temperature"),
		)
	}
	if cfg.MaxTokens < 0 {
		return failure.InvalidInputError(
			fmt.Sprintf("Invalid max_tokens: %d. Must be at least 1", cfg.MaxTokens),
			failure.WithProvider(provider),
			failure.WithDetail("field", "max_tokens"),
		)
	}
	if cfg.TopP < 0 || cfg.TopP > 1 {
		return failure.InvalidInputError(
			fmt.Sprintf("Invalid top_p: %v. Must be between 0.0 and 1.0", cfg.TopP),
			failure.WithProvider(provider),
			failure.WithDetail("field", "top_p"),
		)
	}
	return nil
}

// ValidateInput rejects a blank instruction or an empty input value.
// Adapters whose backends tolerate empty input skip this check.
func ValidateInput(provider, instruction string, input any) error {
	if strings.TrimSpace(instruction) == "" {
		return failure.InvalidInputError("Instruction prompt cannot be empty",
			failure.WithProvider(provider),
			failure.WithDetail("field", "instruction_prompt"),
		)
	}
	if IsEmptyInput(input) {
		return failure.InvalidInputError("Input data cannot be empty",
			failure.WithProvider(provider),
			failure.WithDetail("field", "input_data"),
		)
	}
	return nil
}

// IsEmptyInput reports whether v is nil or an empty map, slice or string.
func IsEmptyInput(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.String:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}

// FormatInputMessage renders the text payload sent to a backend:
//
//	<instruction>
//
//	Input Data:
//	<input as JSON indented by two spaces>
//
// The output is deterministic for a given instruction and input.
func FormatInputMessage(provider, instruction string, input any) (string, error) {
	data, err := json.MarshalIndent(input, "", "  ")
	if err != nil {
		return "", failure.InvalidInputError(
			fmt.Sprintf("Input data is not JSON-serializable: %v", err),
			failure.WithProvider(provider),
			failure.WithCause(err),
		)
	}
	return instruction + "\n\nInput Data:\n" + string(data), nil
}

// ResolveModel returns override when set and def otherwise.
func ResolveModel(override, def string) string {
	if strings.TrimSpace(override) != "" {
		return override
	}
	return def
}
