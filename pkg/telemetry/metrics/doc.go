// Package metrics exposes relay activity as Prometheus metrics.
//
// A Collector is registered twice: as a dispatch.Observer it counts
// requests, latencies, tokens, estimated cost and failures per category; as
// a quota.Observer it mirrors the block state of each provider. The HTTP
// middleware reports served requests through RecordHTTPRequest.
//
// # Metrics
//
//	relay_requests_total{provider,model,outcome}
//	relay_request_duration_seconds{provider}
//	relay_request_tokens_total{provider,model,type}
//	relay_cost_usd_total{provider,model}
//	relay_cost_per_request_usd{provider,model}
//	relay_provider_blocked{provider}
//	relay_provider_blocked_until_seconds{provider}
//	relay_provider_blocks_total{provider}
//	relay_provider_unblocks_total{provider,reason}
//	relay_provider_errors_total{provider,error_type}
//	relay_http_requests_total{method,route,code}
//	relay_http_request_duration_seconds{method,route}
//
// # Cardinality Management
//
// Provider labels outside the supported set are reported as "unknown", and
// model labels beyond the first 1000 provider/model pairs as "other".
package metrics
