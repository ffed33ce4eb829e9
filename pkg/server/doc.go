// Package server provides the relay's HTTP server.
//
// The server wires the handlers of package handlers onto a net/http
// ServeMux, wraps the mux in the middleware chain and manages the listener
// lifecycle:
//
//	srv := server.NewServer(&cfg.Server, cfg.Telemetry.Metrics.Path, server.Dependencies{
//	    Dispatcher: orchestrator,
//	    Catalogue:  models,
//	    Templates:  templates,
//	    Usage:      storage,
//	    Metrics:    collector,
//	    Tracer:     tracer,
//	    Version:    version,
//	})
//	if err := srv.Start(ctx); err != nil {
//	    return err
//	}
//
// Start returns after a graceful shutdown, triggered by cancelling ctx or
// calling Stop. In-flight requests get up to server.shutdown_timeout to
// finish.
package server
