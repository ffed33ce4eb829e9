// Package logging builds the relay's structured logger on log/slog.
//
// Loggers created by New:
//   - write JSON, text or console output at a configurable level
//   - mask provider credentials (sk-..., sk-ant-..., AIza..., bearer tokens,
//     ?key= query parameters) in every string or error attribute
//   - add request_id, provider and model from the context to records
//     logged through the *Context methods, plus trace_id and span_id when
//     the context carries a span
//
// # Usage
//
//	logger, err := logging.NewFromConfig(cfg.Telemetry.Logging, os.Stderr)
//	if err != nil {
//	    return err
//	}
//	slog.SetDefault(logger)
//
//	ctx = logging.WithRequestID(ctx, id)
//	slog.InfoContext(ctx, "dispatch completed", "provider", "gemini")
package logging
