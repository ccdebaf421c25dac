// Package querier answers questions about stored slices.
package querier

import (
	"context"

	"github.com/go-errors/errors"
	"github.com/strrl/logslice/pkg/store"
)

// Querier provides a high-level interface for querying stored slices.
type Querier struct {
	store store.Store
}

// NewQuerier creates a new Querier backed by the given store.
func NewQuerier(s store.Store) *Querier {
	return &Querier{store: s}
}

// ByPattern returns stored lines belonging to the given pattern.
func (q *Querier) ByPattern(ctx context.Context, patternID string) ([]store.LogEntry, error) {
	return q.store.QueryLogs(ctx, store.QueryOpts{PatternID: patternID})
}

// Summary returns persisted patterns with their occurrence counts.
func (q *Querier) Summary(ctx context.Context) ([]store.PatternSummary, error) {
	return q.store.PatternSummaries(ctx)
}

// Search returns stored lines matching the given options.
func (q *Querier) Search(ctx context.Context, opts store.QueryOpts) ([]store.LogEntry, error) {
	if !opts.From.IsZero() && !opts.To.IsZero() && opts.To.Before(opts.From) {
		return nil, errors.Errorf("empty range: %s is after %s", opts.From, opts.To)
	}
	return q.store.QueryLogs(ctx, opts)
}

// Runs lists ingested slices, newest first.
func (q *Querier) Runs(ctx context.Context) ([]store.Run, error) {
	return q.store.Runs(ctx)
}
