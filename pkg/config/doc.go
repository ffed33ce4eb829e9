// Package config provides configuration management for the relay.
//
// Configuration is read from an optional YAML file, completed with defaults
// and then overlaid with the environment. Provider credentials are expected
// to come from the environment (or a .env file in the working directory):
//
//	GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY, DEEPSEEK_API_KEY,
//	DEEPSEEK_BASE_URL, VERTEX_AI_PROJECT_ID, VERTEX_AI_LOCATION,
//	VERTEX_AI_CREDENTIALS_PATH, VERTEX_AI_ACCESS_TOKEN
//
// Operational settings can be overridden with RELAY_SECTION_FIELD variables,
// for example RELAY_SERVER_LISTEN_ADDRESS or RELAY_QUOTA_BLOCK_DURATION.
//
// # Configuration Precedence
//
// Later sources override earlier ones:
//
//  1. Built-in defaults
//  2. YAML file
//  3. .env file (only for variables not already set)
//  4. Process environment
//
// # Global Instance
//
// Initialize loads the configuration once at startup and GetConfig returns
// it. Components receive their section explicitly; only the CLI touches the
// global instance.
//
// # Example
//
//	server:
//	  listen_address: "0.0.0.0:8000"
//	  request_timeout: 120s
//	quota:
//	  block_duration: 60m
//	ledger:
//	  driver: sqlite
//	  path: data/usage.db
//	  retention:
//	    days: 30
//	    schedule: "0 3 * * *"
//	telemetry:
//	  logging:
//	    level: info
//	    format: json
package config
