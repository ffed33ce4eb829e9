package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// Driver names accepted by SQLiteConfig.Driver.
const (
	DriverModernc = "sqlite"
	DriverCgo     = "sqlite3"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Driver is DriverModernc or DriverCgo.
	// Default: DriverModernc
	Driver string

	// Path is the database file path. Parent directories are created.
	Path string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 4
	MaxOpenConns int

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Driver:       DriverModernc,
		Path:         "data/usage.db",
		MaxOpenConns: 4,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements Storage on SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	driver string
	logger *slog.Logger
}

var _ Storage = (*SQLiteStorage)(nil)

// OpenSQLite opens (creating if needed) the ledger database and applies the
// schema. WAL journaling and the busy timeout are set through the DSN so
// every pooled connection gets them.
func OpenSQLite(cfg *SQLiteConfig) (*SQLiteStorage, error) {
	defaults := DefaultSQLiteConfig()
	if cfg == nil {
		cfg = defaults
	}
	c := *cfg
	if c.Driver == "" {
		c.Driver = defaults.Driver
	}
	if c.Path == "" {
		c.Path = defaults.Path
	}
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = defaults.MaxOpenConns
	}
	if c.BusyTimeout <= 0 {
		c.BusyTimeout = defaults.BusyTimeout
	}

	dsn, err := buildDSN(c.Driver, c.Path, c.BusyTimeout)
	if err != nil {
		return nil, storageError(c.Driver, "open", err)
	}
	if dir := filepath.Dir(c.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, storageError(c.Driver, "mkdir", err)
		}
	}

	db, err := sql.Open(c.Driver, dsn)
	if err != nil {
		return nil, storageError(c.Driver, "open", err)
	}
	db.SetMaxOpenConns(c.MaxOpenConns)
	db.SetMaxIdleConns(c.MaxOpenConns)

	s := &SQLiteStorage{
		db:     db,
		driver: c.Driver,
		logger: slog.Default().With("component", "ledger.sqlite"),
	}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	s.logger.Info("usage ledger opened",
		"driver", c.Driver,
		"path", c.Path,
		"max_open_conns", c.MaxOpenConns,
	)
	return s, nil
}

// buildDSN encodes WAL mode and the busy timeout in each driver's own query
// parameter syntax.
func buildDSN(driver, path string, busy time.Duration) (string, error) {
	ms := busy.Milliseconds()
	switch driver {
	case DriverModernc:
		return fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)", path, ms), nil
	case DriverCgo:
		return fmt.Sprintf("file:%s?_busy_timeout=%d&_journal_mode=WAL", path, ms), nil
	default:
		return "", fmt.Errorf("unsupported driver %q", driver)
	}
}

func (s *SQLiteStorage) initialize() error {
	if _, err := s.db.Exec(schema); err != nil {
		return storageError(s.driver, "create_schema", err)
	}
	if _, err := s.db.Exec(insertSchemaVersion, SchemaVersion); err != nil {
		return storageError(s.driver, "insert_schema_version", err)
	}

	var version sql.NullInt64
	if err := s.db.QueryRow(getSchemaVersion).Scan(&version); err != nil {
		return storageError(s.driver, "get_schema_version", err)
	}
	if version.Int64 != SchemaVersion {
		return storageError(s.driver, "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version.Int64))
	}
	return nil
}

// Driver returns the database/sql driver name in use.
func (s *SQLiteStorage) Driver() string {
	return s.driver
}

// Store persists an entry.
func (s *SQLiteStorage) Store(ctx context.Context, e *Entry) error {
	const query = `
		INSERT INTO usage_entries (
			id, request_id, provider, model, outcome, status,
			prompt_tokens, completion_tokens, total_tokens,
			cost, duration_ns, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		e.ID, nullString(e.RequestID), e.Provider, nullString(e.Model), e.Outcome, e.Status,
		e.PromptTokens, e.CompletionTokens, e.TotalTokens,
		e.Cost.String(), int64(e.Duration), e.CreatedAt.UnixNano(),
	)
	if err != nil {
		return storageError(s.driver, "store", err)
	}
	return nil
}

// Query returns matching entries, newest first.
func (s *SQLiteStorage) Query(ctx context.Context, q *Query) ([]*Entry, error) {
	where, args := buildWhereClause(q)
	query := `
		SELECT id, request_id, provider, model, outcome, status,
			prompt_tokens, completion_tokens, total_tokens,
			cost, duration_ns, created_at
		FROM usage_entries` + where + ` ORDER BY created_at DESC`
	if q != nil && q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageError(s.driver, "query", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, storageError(s.driver, "scan", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError(s.driver, "query", err)
	}
	return entries, nil
}

// Recent returns the newest limit entries.
func (s *SQLiteStorage) Recent(ctx context.Context, limit int) ([]*Entry, error) {
	return s.Query(ctx, &Query{Limit: limit})
}

// Count returns the number of matching entries.
func (s *SQLiteStorage) Count(ctx context.Context, q *Query) (int64, error) {
	where, args := buildWhereClause(q)
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM usage_entries"+where, args...).Scan(&n); err != nil {
		return 0, storageError(s.driver, "count", err)
	}
	return n, nil
}

// Summary aggregates entries per provider. Token sums run in SQL; costs are
// summed as decimals so no precision is lost.
func (s *SQLiteStorage) Summary(ctx context.Context, since time.Time) ([]ProviderUsage, error) {
	where, args := buildWhereClause(&Query{Since: since})

	rows, err := s.db.QueryContext(ctx, `
		SELECT provider,
			COUNT(*),
			SUM(CASE WHEN outcome = 'success' THEN 1 ELSE 0 END),
			SUM(prompt_tokens), SUM(completion_tokens), SUM(total_tokens)
		FROM usage_entries`+where+`
		GROUP BY provider ORDER BY provider`, args...)
	if err != nil {
		return nil, storageError(s.driver, "summary", err)
	}

	var out []ProviderUsage
	index := make(map[string]int)
	for rows.Next() {
		var u ProviderUsage
		if err := rows.Scan(&u.Provider, &u.Requests, &u.Successes,
			&u.PromptTokens, &u.CompletionTokens, &u.TotalTokens); err != nil {
			rows.Close()
			return nil, storageError(s.driver, "summary", err)
		}
		u.Failures = u.Requests - u.Successes
		u.Cost = decimal.Zero
		index[u.Provider] = len(out)
		out = append(out, u)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, storageError(s.driver, "summary", err)
	}

	costs, err := s.db.QueryContext(ctx, "SELECT provider, cost FROM usage_entries"+where, args...)
	if err != nil {
		return nil, storageError(s.driver, "summary_cost", err)
	}
	defer costs.Close()
	for costs.Next() {
		var provider, raw string
		if err := costs.Scan(&provider, &raw); err != nil {
			return nil, storageError(s.driver, "summary_cost", err)
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			continue
		}
		if i, ok := index[provider]; ok {
			out[i].Cost = out[i].Cost.Add(d)
		}
	}
	if err := costs.Err(); err != nil {
		return nil, storageError(s.driver, "summary_cost", err)
	}
	return out, nil
}

// Prune removes entries created before t.
func (s *SQLiteStorage) Prune(ctx context.Context, t time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM usage_entries WHERE created_at < ?", t.UnixNano())
	if err != nil {
		return 0, storageError(s.driver, "delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storageError(s.driver, "delete", err)
	}
	return n, nil
}

// Ping checks that the database is reachable.
func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return storageError(s.driver, "ping", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return storageError(s.driver, "close", err)
	}
	return nil
}

func buildWhereClause(q *Query) (string, []any) {
	if q == nil {
		return "", nil
	}

	var conds []string
	var args []any
	if q.Provider != "" {
		conds = append(conds, "provider = ?")
		args = append(args, q.Provider)
	}
	if q.Outcome != "" {
		conds = append(conds, "outcome = ?")
		args = append(args, q.Outcome)
	}
	if !q.Since.IsZero() {
		conds = append(conds, "created_at >= ?")
		args = append(args, q.Since.UnixNano())
	}
	if !q.Until.IsZero() {
		conds = append(conds, "created_at < ?")
		args = append(args, q.Until.UnixNano())
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanEntry(rows *sql.Rows) (*Entry, error) {
	var (
		e          Entry
		requestID  sql.NullString
		model      sql.NullString
		cost       string
		durationNs int64
		createdNs  int64
	)
	if err := rows.Scan(&e.ID, &requestID, &e.Provider, &model, &e.Outcome, &e.Status,
		&e.PromptTokens, &e.CompletionTokens, &e.TotalTokens,
		&cost, &durationNs, &createdNs); err != nil {
		return nil, err
	}

	d, err := decimal.NewFromString(cost)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("entry %s has invalid cost %q", e.ID, cost), err)
	}
	e.RequestID = requestID.String
	e.Model = model.String
	e.Cost = d
	e.Duration = time.Duration(durationNs)
	e.CreatedAt = time.Unix(0, createdNs).UTC()
	return &e, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
