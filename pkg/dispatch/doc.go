// Package dispatch routes a validated request to one provider adapter and
// turns the result into a response or a status-coded structured failure.
//
// The flow for every request is:
//
//  1. resolve the provider in the registry (unknown: invalid_provider, 400)
//  2. reject blocked providers (quota_exceeded, 429) without building an adapter
//  3. reject an explicit max_tokens above the model's output limit (invalid_config, 400)
//  4. build the adapter (missing credentials: 400)
//  5. invoke it and map the failure category to a status
//
// A quota failure from any backend blocks that provider in the shared
// tracker. Nothing is retried. Observers see every outcome, successful or
// not.
package dispatch
