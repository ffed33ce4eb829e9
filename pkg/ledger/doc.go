// Package ledger keeps a durable record of every dispatch in SQLite.
//
// Each finished dispatch becomes one Entry holding the provider, model,
// outcome, token usage, estimated cost and latency. Entries are written off
// the request path by a Recorder, summarised per provider for the /usage
// endpoint and pruned on a cron schedule by a Scheduler.
//
// # Drivers
//
// Two SQLite drivers are supported and selected by name:
//
//   - "sqlite": modernc.org/sqlite, pure Go (default)
//   - "sqlite3": github.com/mattn/go-sqlite3, requires cgo
//
// Timestamps are stored as unix nanoseconds and costs as decimal strings, so
// both drivers read back identical values.
//
// # Usage
//
//	store, err := ledger.OpenSQLite(&ledger.SQLiteConfig{Driver: "sqlite", Path: "data/usage.db"})
//	rec := ledger.NewRecorder(store, nil)
//	orch := dispatch.New(registry, tracker, dispatch.WithObserver(rec))
//	defer rec.Close()
package ledger
