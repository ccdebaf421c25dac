package store

import (
	"context"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *DuckDBStore {
	t.Helper()
	s, err := NewDuckDBStore("")
	if err != nil {
		t.Fatalf("NewDuckDBStore: %v", err)
	}
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestInitIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("second Init: %v", err)
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM slice_lines").Scan(&count); err != nil {
		t.Fatalf("query after init: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 rows, got %d", count)
	}
}

func TestRuns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	older := Run{ID: "r1", Source: "a.log", CreatedAt: base, WindowStart: base.Add(-time.Hour), Lines: 3}
	newer := Run{ID: "r2", Source: "b.log", CreatedAt: base.Add(time.Minute), Lines: 5}
	for _, r := range []Run{older, newer} {
		if err := s.InsertRun(ctx, r); err != nil {
			t.Fatalf("InsertRun: %v", err)
		}
	}

	runs, err := s.Runs(ctx)
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "r2" || runs[1].ID != "r1" {
		t.Fatalf("unexpected runs %+v", runs)
	}
	if !runs[1].WindowStart.Equal(older.WindowStart) {
		t.Errorf("WindowStart = %v, want %v", runs[1].WindowStart, older.WindowStart)
	}
	if !runs[0].WindowStart.IsZero() || !runs[0].WindowEnd.IsZero() {
		t.Errorf("expected open window for r2, got %+v", runs[0])
	}
}

func TestQueryLogs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	entries := []LogEntry{
		{RunID: "r1", LineNumber: 1, Timestamp: base, Raw: "login alice", PatternID: "a"},
		{RunID: "r1", LineNumber: 2, Timestamp: base.Add(time.Minute), Raw: "timeout db", PatternID: "b"},
		{RunID: "r1", LineNumber: 3, Raw: "\tat Foo.bar", Context: true},
		{RunID: "r2", LineNumber: 4, Timestamp: base.Add(3 * time.Minute), Raw: "login bob", PatternID: "a"},
	}
	if err := s.InsertLogBatch(ctx, entries); err != nil {
		t.Fatalf("InsertLogBatch: %v", err)
	}

	tests := []struct {
		name string
		opts QueryOpts
		want int
	}{
		{"all", QueryOpts{}, 4},
		{"run", QueryOpts{RunID: "r1"}, 3},
		{"pattern", QueryOpts{PatternID: "a"}, 2},
		{"time range", QueryOpts{From: base.Add(30 * time.Second), To: base.Add(5 * time.Minute)}, 2},
		{"contains", QueryOpts{Contains: "login"}, 2},
		{"limit", QueryOpts{Limit: 1}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.QueryLogs(ctx, tt.opts)
			if err != nil {
				t.Fatalf("QueryLogs: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d entries, want %d", len(got), tt.want)
			}
		})
	}

	got, err := s.QueryLogs(ctx, QueryOpts{RunID: "r1"})
	if err != nil {
		t.Fatalf("QueryLogs: %v", err)
	}
	if !got[2].Timestamp.IsZero() || !got[2].Context {
		t.Errorf("undated context line round-tripped as %+v", got[2])
	}
	if !got[0].Timestamp.Equal(base) || got[0].Raw != "login alice" {
		t.Errorf("first entry = %+v", got[0])
	}
}

func TestPatternSummaries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.InsertPatterns(ctx, []Pattern{
		{PatternID: "a", RawPattern: "login <*>"},
		{PatternID: "b", RawPattern: "timeout <*>"},
	}); err != nil {
		t.Fatalf("InsertPatterns: %v", err)
	}
	// Upsert replaces the text.
	if err := s.InsertPatterns(ctx, []Pattern{{PatternID: "b", RawPattern: "timeout <*> after <*>"}}); err != nil {
		t.Fatalf("InsertPatterns upsert: %v", err)
	}

	entries := []LogEntry{
		{RunID: "r", LineNumber: 1, Raw: "login alice", PatternID: "a"},
		{RunID: "r", LineNumber: 2, Raw: "login bob", PatternID: "a"},
		{RunID: "r", LineNumber: 3, Raw: "timeout db after 3s", PatternID: "b"},
		{RunID: "r", LineNumber: 4, Raw: "one-off", PatternID: "orphan"},
	}
	if err := s.InsertLogBatch(ctx, entries); err != nil {
		t.Fatalf("InsertLogBatch: %v", err)
	}

	summaries, err := s.PatternSummaries(ctx)
	if err != nil {
		t.Fatalf("PatternSummaries: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries (only persisted patterns), got %d", len(summaries))
	}
	if summaries[0].PatternID != "a" || summaries[0].Count != 2 {
		t.Errorf("first summary: got %+v, want a with count 2", summaries[0])
	}
	if summaries[1].Pattern != "timeout <*> after <*>" || summaries[1].Count != 1 {
		t.Errorf("second summary: got %+v", summaries[1])
	}
}
