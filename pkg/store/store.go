// Package store persists emitted slices so they can be queried later.
package store

import (
	"context"
	"time"
)

// Run describes one ingested slice.
type Run struct {
	ID          string
	Source      string
	CreatedAt   time.Time
	WindowStart time.Time
	WindowEnd   time.Time
	Lines       int
}

// LogEntry is one stored line of a slice. Timestamp is zero for undated lines.
type LogEntry struct {
	ID         int64
	RunID      string
	LineNumber int
	Timestamp  time.Time
	Raw        string
	// Context marks lines emitted around a match rather than matching.
	Context   bool
	PatternID string
}

// Pattern is a Drain template discovered in a slice.
type Pattern struct {
	PatternID  string
	RawPattern string
}

// PatternSummary holds a pattern and the number of stored lines using it.
type PatternSummary struct {
	PatternID string
	Pattern   string
	Count     int
}

// QueryOpts filters stored entries. Zero values do not filter.
type QueryOpts struct {
	RunID     string
	PatternID string
	From      time.Time
	To        time.Time
	Contains  string
	Limit     int
}

// Store persists slices.
type Store interface {
	// Init creates tables if they don't exist.
	Init(ctx context.Context) error
	// InsertRun records a slice run.
	InsertRun(ctx context.Context, run Run) error
	// Runs returns recorded runs, newest first.
	Runs(ctx context.Context) ([]Run, error)
	// InsertLogBatch stores entries in one transaction.
	InsertLogBatch(ctx context.Context, entries []LogEntry) error
	// QueryLogs returns entries matching opts ordered by run and line.
	QueryLogs(ctx context.Context, opts QueryOpts) ([]LogEntry, error)
	// InsertPatterns upserts patterns.
	InsertPatterns(ctx context.Context, patterns []Pattern) error
	// PatternSummaries returns persisted patterns with their line counts.
	PatternSummaries(ctx context.Context) ([]PatternSummary, error)
	// Close releases resources.
	Close() error
}
