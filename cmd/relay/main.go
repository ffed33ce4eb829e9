// Relay is a provider-agnostic gateway for LLM text generation.
//
// It accepts one request shape, dispatches it to Gemini, OpenAI, Claude,
// DeepSeek or Vertex AI, and answers with one response shape or one
// structured error shape. Providers that report quota exhaustion are taken
// out of rotation for a configurable time.
//
// Usage:
//
//	# Start the server with defaults and credentials from the environment
//	relay run
//
//	# Start with a configuration file
//	relay run --config /etc/relay/config.yaml
//
//	# Inspect a running server
//	relay status --server http://127.0.0.1:8000
//	relay unblock gemini
//
//	# Browse the model catalogue and prompt templates
//	relay models --provider openai
//	relay prompts show data_analysis --extra "focus on revenue"
//
//	# Summarise recorded usage
//	relay usage --since 24h
package main

func main() {
	Execute()
}
