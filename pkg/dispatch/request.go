package dispatch

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"datacrunch-hq/relay/pkg/failure"
	"datacrunch-hq/relay/pkg/providers"
)

// ConfigOverrides are the sampling parameters a caller may set. Nil fields
// keep their defaults.
type ConfigOverrides struct {
	Temperature      *float64 `json:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`
	MaxTokens        *int     `json:"max_tokens,omitempty" validate:"omitempty,gte=1"`
	TopP             *float64 `json:"top_p,omitempty" validate:"omitempty,gte=0,lte=1"`
	FrequencyPenalty *float64 `json:"frequency_penalty,omitempty" validate:"omitempty,gte=-2,lte=2"`
	PresencePenalty  *float64 `json:"presence_penalty,omitempty" validate:"omitempty,gte=-2,lte=2"`
}

// Payload is the wire form of a dispatch request.
type Payload struct {
	Provider          string           `json:"provider" validate:"required"`
	InstructionPrompt string           `json:"instruction_prompt" validate:"notblank"`
	InputData         any              `json:"input_data" validate:"required"`
	AIConfig          *ConfigOverrides `json:"ai_config,omitempty"`
	ModelName         string           `json:"model_name,omitempty"`
}

// Request is a validated dispatch request. It cannot be modified after
// NewRequest returns.
type Request struct {
	provider    string
	instruction string
	input       any
	config      providers.GenerationConfig
	model       string
}

var payloadValidator = newPayloadValidator()

func newPayloadValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// NewRequest validates p and merges its overrides onto the default
// generation config. Violations are reported as invalid_input with a
// "fields" detail mapping each offending field to its problem.
func NewRequest(p Payload) (*Request, error) {
	if err := payloadValidator.Struct(p); err != nil {
		return nil, validationFailure(p.Provider, err)
	}

	cfg := providers.DefaultGenerationConfig()
	if o := p.AIConfig; o != nil {
		override(&cfg.Temperature, o.Temperature)
		override(&cfg.MaxTokens, o.MaxTokens)
		override(&cfg.TopP, o.TopP)
		override(&cfg.FrequencyPenalty, o.FrequencyPenalty)
		override(&cfg.PresencePenalty, o.PresencePenalty)
	}

	return &Request{
		provider:    strings.TrimSpace(p.Provider),
		instruction: p.InstructionPrompt,
		input:       p.InputData,
		config:      cfg,
		model:       strings.TrimSpace(p.ModelName),
	}, nil
}

func override[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// Provider returns the requested provider name.
func (r *Request) Provider() string { return r.provider }

// Instruction returns the instruction prompt.
func (r *Request) Instruction() string { return r.instruction }

// Input returns the structured input data.
func (r *Request) Input() any { return r.input }

// Config returns the effective generation config.
func (r *Request) Config() providers.GenerationConfig { return r.config }

// Model returns the model override, or "" for the provider default.
func (r *Request) Model() string { return r.model }

func validationFailure(provider string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return failure.InvalidInputError(fmt.Sprintf("Invalid request: %v", err), failure.WithCause(err))
	}

	fields := make(map[string]any, len(verrs))
	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		// Namespace is "Payload.ai_config.temperature"; drop the type name.
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		msg := fieldMessage(fe)
		fields[field] = msg
		messages = append(messages, field+" "+msg)
	}

	opts := []failure.Option{failure.WithDetail("fields", fields)}
	if provider != "" {
		opts = append(opts, failure.WithProvider(provider))
	}
	return failure.InvalidInputError("Invalid request: "+strings.Join(messages, "; "), opts...)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}
