// Package providers defines the contract every LLM backend adapter satisfies
// and the pieces the adapters share.
//
// # Overview
//
// An adapter turns one call of the form
//
//	Invoke(ctx, instruction, input, config, model)
//
// into a single request against its backend and normalizes the answer into a
// Response: the generated text, token usage and the model that served it.
// Adapters never retry on their own and always report failures as
// *failure.Error values, classifying backend errors with failure.Classify.
//
// # Shared behaviour
//
//   - ValidateConfig checks temperature, top_p and max_tokens bounds before
//     any network traffic happens.
//   - FormatInputMessage builds the text payload: the instruction, a blank
//     line, the "Input Data:" label and the input as indented JSON.
//   - HTTPProvider wraps a pooled HTTP client and maps status codes onto
//     AuthError, RateLimitError, TimeoutError, ParseError and ProviderError.
//
// # Adapters
//
// The concrete adapters live in sub-packages:
//
//   - gemini: Google Gemini REST API with an API key
//   - vertexai: Gemini models served by Vertex AI with OAuth2 credentials
//   - openai: OpenAI chat completions via github.com/sashabaranov/go-openai
//   - deepseek: DeepSeek's OpenAI-compatible endpoint, built on the openai adapter
//   - claude: Anthropic Messages API via github.com/anthropics/anthropic-sdk-go
//
// Adapters are constructed per request by the provider registry in package
// providerfactory and are stateless apart from their configuration.
package providers
