package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func openTempDB(t *testing.T, driver string) *SQLiteStorage {
	t.Helper()

	s, err := OpenSQLite(&SQLiteConfig{
		Driver: driver,
		Path:   filepath.Join(t.TempDir(), "nested", "usage.db"),
	})
	if err != nil {
		if driver == DriverCgo && strings.Contains(err.Error(), "cgo") {
			t.Skipf("sqlite3 driver unavailable: %v", err)
		}
		t.Fatalf("OpenSQLite(%s) failed: %v", driver, err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func entry(id, provider, outcome string, at time.Time, prompt, completion int, cost string) *Entry {
	return &Entry{
		ID:               id,
		RequestID:        "req-" + id,
		Provider:         provider,
		Model:            provider + "-model",
		Outcome:          outcome,
		Status:           200,
		PromptTokens:     prompt,
		CompletionTokens: completion,
		TotalTokens:      prompt + completion,
		Cost:             decimal.RequireFromString(cost),
		Duration:         1500 * time.Millisecond,
		CreatedAt:        at,
	}
}

func seed(t *testing.T, s Storage) {
	t.Helper()
	ctx := context.Background()
	entries := []*Entry{
		entry("1", "openai", "success", base, 100, 50, "0.0060"),
		entry("2", "openai", "success", base.Add(time.Hour), 200, 100, "0.0120"),
		entry("3", "openai", "quota_exceeded", base.Add(2*time.Hour), 0, 0, "0"),
		entry("4", "gemini", "success", base.Add(3*time.Hour), 10, 10, "0.0000125"),
	}
	for _, e := range entries {
		if err := s.Store(ctx, e); err != nil {
			t.Fatalf("Store(%s) failed: %v", e.ID, err)
		}
	}
}

func TestSQLiteStorage_Drivers(t *testing.T) {
	for _, driver := range []string{DriverModernc, DriverCgo} {
		t.Run(driver, func(t *testing.T) {
			s := openTempDB(t, driver)
			seed(t, s)

			got, err := s.Query(context.Background(), &Query{Provider: "openai", Outcome: "success"})
			if err != nil {
				t.Fatalf("Query failed: %v", err)
			}
			if len(got) != 2 {
				t.Fatalf("got %d entries, want 2", len(got))
			}
			// Newest first, values round-trip exactly.
			e := got[0]
			if e.ID != "2" || e.RequestID != "req-2" || e.Model != "openai-model" {
				t.Errorf("unexpected entry: %+v", e)
			}
			if !e.CreatedAt.Equal(base.Add(time.Hour)) {
				t.Errorf("CreatedAt = %v", e.CreatedAt)
			}
			if !e.Cost.Equal(decimal.RequireFromString("0.012")) {
				t.Errorf("Cost = %s", e.Cost)
			}
			if e.Duration != 1500*time.Millisecond || e.TotalTokens != 300 {
				t.Errorf("Duration/TotalTokens = %v/%d", e.Duration, e.TotalTokens)
			}
		})
	}
}

func TestSQLiteStorage_QueryFilters(t *testing.T) {
	s := openTempDB(t, DriverModernc)
	seed(t, s)
	ctx := context.Background()

	tests := []struct {
		name  string
		query *Query
		want  int
	}{
		{"all", nil, 4},
		{"provider", &Query{Provider: "gemini"}, 1},
		{"outcome", &Query{Outcome: "quota_exceeded"}, 1},
		{"since", &Query{Since: base.Add(90 * time.Minute)}, 2},
		{"until", &Query{Until: base.Add(time.Hour)}, 1},
		{"limit", &Query{Limit: 3}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Query(ctx, tt.query)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != tt.want {
				t.Errorf("Query returned %d entries, want %d", len(got), tt.want)
			}

			n, err := s.Count(ctx, tt.query)
			if err != nil {
				t.Fatal(err)
			}
			if tt.query == nil || tt.query.Limit == 0 {
				if n != int64(tt.want) {
					t.Errorf("Count = %d, want %d", n, tt.want)
				}
			}
		})
	}
}

func TestSQLiteStorage_Summary(t *testing.T) {
	s := openTempDB(t, DriverModernc)
	seed(t, s)

	summary, err := s.Summary(context.Background(), time.Time{})
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if len(summary) != 2 || summary[0].Provider != "gemini" || summary[1].Provider != "openai" {
		t.Fatalf("summary = %+v", summary)
	}

	oa := summary[1]
	if oa.Requests != 3 || oa.Successes != 2 || oa.Failures != 1 {
		t.Errorf("openai counts = %+v", oa)
	}
	if oa.PromptTokens != 300 || oa.CompletionTokens != 150 || oa.TotalTokens != 450 {
		t.Errorf("openai tokens = %+v", oa)
	}
	if !oa.Cost.Equal(decimal.RequireFromString("0.018")) {
		t.Errorf("openai cost = %s", oa.Cost)
	}
	if !summary[0].Cost.Equal(decimal.RequireFromString("0.0000125")) {
		t.Errorf("gemini cost = %s", summary[0].Cost)
	}

	recent, err := s.Summary(context.Background(), base.Add(150*time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 1 || recent[0].Provider != "gemini" {
		t.Errorf("recent summary = %+v", recent)
	}
}

func TestSQLiteStorage_Prune(t *testing.T) {
	s := openTempDB(t, DriverModernc)
	seed(t, s)
	ctx := context.Background()

	n, err := s.Prune(ctx, base.Add(90*time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("deleted %d, want 2", n)
	}
	if left, _ := s.Count(ctx, nil); left != 2 {
		t.Errorf("remaining = %d", left)
	}
}

func TestSQLiteStorage_DuplicateID(t *testing.T) {
	s := openTempDB(t, DriverModernc)
	ctx := context.Background()

	e := entry("dup", "claude", "success", base, 1, 1, "0")
	if err := s.Store(ctx, e); err != nil {
		t.Fatal(err)
	}
	err := s.Store(ctx, e)
	var serr *StorageError
	if !errors.As(err, &serr) || serr.Operation != "store" {
		t.Errorf("expected store StorageError, got %v", err)
	}
}

func TestOpenSQLite_UnsupportedDriver(t *testing.T) {
	_, err := OpenSQLite(&SQLiteConfig{Driver: "postgres", Path: filepath.Join(t.TempDir(), "x.db")})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestOpenSQLite_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.db")
	s, err := OpenSQLite(&SQLiteConfig{Path: path})
	if err != nil {
		t.Fatal(err)
	}
	seed(t, s)
	s.Close()

	s, err = OpenSQLite(&SQLiteConfig{Path: path})
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s.Close()
	if n, _ := s.Count(context.Background(), nil); n != 4 {
		t.Errorf("entries after reopen = %d", n)
	}
}

func TestSQLiteStorage_Recent(t *testing.T) {
	s := openTempDB(t, DriverModernc)
	seed(t, s)

	got, err := s.Recent(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != "4" || got[1].ID != "3" {
		t.Errorf("Recent returned %d entries starting with %v", len(got), got)
	}
}

func TestSQLiteStorage_Ping(t *testing.T) {
	s, err := OpenSQLite(&SQLiteConfig{Path: filepath.Join(t.TempDir(), "usage.db")})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping() = %v", err)
	}

	s.Close()
	err = s.Ping(context.Background())
	var serr *StorageError
	if !errors.As(err, &serr) {
		t.Errorf("Ping() after Close = %v, want *StorageError", err)
	}
}
