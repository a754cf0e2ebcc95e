// Janus is an LLM gateway: one API surface in front of many model providers.
//
// It routes completion and embedding requests across providers (OpenAI,
// Anthropic, Cohere, Hugging Face, Azure OpenAI), providing:
//   - Model mapping, aliases and content-aware routing strategies
//   - Automatic fallback chains on provider failure
//   - Provider health probing and performance tracking
//   - Request recording, usage budgets and cost accounting
//   - Prometheus metrics and OpenTelemetry tracing
//
// Usage:
//
//	# Start the gateway with default configuration
//	janus run
//
//	# Start with a custom configuration file
//	janus run --config /path/to/config.yaml
//
//	# Validate a configuration file
//	janus validate
//
//	# Probe configured provider connectivity
//	janus test
//
//	# Inspect the model catalogue
//	janus models
//
//	# Query recorded requests
//	janus records query --since 24h --user alice
package main

func main() {
	Execute()
}
