package querier

import (
	"context"
	"testing"
	"time"

	"github.com/strrl/logslice/pkg/store"
)

var base = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

func setupQuerier(t *testing.T) *Querier {
	t.Helper()
	ctx := context.Background()
	s, err := store.NewDuckDBStore("")
	if err != nil {
		t.Fatalf("NewDuckDBStore: %v", err)
	}
	if err := s.Init(ctx); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	patterns := []store.Pattern{
		{PatternID: "login", RawPattern: "login user=<*>"},
		{PatternID: "error", RawPattern: "error <*>"},
	}
	if err := s.InsertPatterns(ctx, patterns); err != nil {
		t.Fatalf("InsertPatterns: %v", err)
	}
	if err := s.InsertRun(ctx, store.Run{ID: "run", Source: "app.log", CreatedAt: base, Lines: 4}); err != nil {
		t.Fatalf("InsertRun: %v", err)
	}

	entries := []store.LogEntry{
		{RunID: "run", LineNumber: 1, Timestamp: base, Raw: "login user=alice", PatternID: "login"},
		{RunID: "run", LineNumber: 2, Timestamp: base.Add(time.Second), Raw: "login user=bob", PatternID: "login"},
		{RunID: "run", LineNumber: 3, Timestamp: base.Add(2 * time.Second), Raw: "error timeout", PatternID: "error"},
		{RunID: "run", LineNumber: 4, Timestamp: base.Add(3 * time.Second), Raw: "login user=carol", PatternID: "login"},
	}
	if err := s.InsertLogBatch(ctx, entries); err != nil {
		t.Fatalf("InsertLogBatch: %v", err)
	}

	return NewQuerier(s)
}

func TestByPattern(t *testing.T) {
	q := setupQuerier(t)
	ctx := context.Background()

	results, err := q.ByPattern(ctx, "login")
	if err != nil {
		t.Fatalf("ByPattern: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("expected 3 login entries, got %d", len(results))
	}

	results, err = q.ByPattern(ctx, "error")
	if err != nil {
		t.Fatalf("ByPattern error: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("expected 1 error entry, got %d", len(results))
	}
}

func TestSummary(t *testing.T) {
	q := setupQuerier(t)

	summaries, err := q.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}
	if summaries[0].PatternID != "login" || summaries[0].Count != 3 {
		t.Errorf("expected login with count 3 first, got %+v", summaries[0])
	}
}

func TestSearch(t *testing.T) {
	q := setupQuerier(t)
	ctx := context.Background()

	results, err := q.Search(ctx, store.QueryOpts{
		From: base.Add(time.Second),
		To:   base.Add(2 * time.Second),
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 entries in range, got %d", len(results))
	}
	if results[0].Raw != "login user=bob" {
		t.Errorf("expected bob first, got %q", results[0].Raw)
	}

	if _, err := q.Search(ctx, store.QueryOpts{From: base.Add(time.Hour), To: base}); err == nil {
		t.Error("expected error for inverted range")
	}
}

func TestRuns(t *testing.T) {
	q := setupQuerier(t)

	runs, err := q.Runs(context.Background())
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 1 || runs[0].Source != "app.log" {
		t.Errorf("unexpected runs %+v", runs)
	}
}
