// Package health provides the readiness probe.
//
// GET /health is a static liveness answer served by the handlers package.
// GET /ready runs the checks registered here concurrently, each bounded by
// the checker timeout, and answers 503 when any of them fails:
//
//	checker := health.New(5 * time.Second)
//	checker.Register("ledger", storage.Ping)
//	checker.Register("providers", orchestrator.CheckAvailable)
//	mux.Handle("GET /ready", checker.ReadinessHandler())
package health
