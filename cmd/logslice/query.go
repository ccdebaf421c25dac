package main

import (
	"fmt"
	"io"
	"time"

	"github.com/go-errors/errors"
	"github.com/spf13/cobra"
	"github.com/strrl/logslice/pkg/config"
	"github.com/strrl/logslice/pkg/querier"
	"github.com/strrl/logslice/pkg/store"
	"github.com/strrl/logslice/pkg/timestamp"
)

type queryFlags struct {
	db       string
	runID    string
	from     string
	to       string
	pattern  string
	contains string
	limit    int
	summary  bool
	runs     bool
}

func queryCmd() *cobra.Command {
	qf := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query slices stored by 'logslice ingest'",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, qf)
		},
	}
	f := cmd.Flags()
	f.StringVar(&qf.db, "db", "", "path to DuckDB database (default logslice.duckdb)")
	f.StringVar(&qf.runID, "run", "", "only lines from this run")
	f.StringVar(&qf.from, "from", "", "only lines at or after this time")
	f.StringVar(&qf.to, "to", "", "only lines at or before this time")
	f.StringVar(&qf.pattern, "pattern", "", "only lines with this pattern ID")
	f.StringVar(&qf.contains, "contains", "", "only lines containing this text")
	f.IntVar(&qf.limit, "limit", 0, "maximum number of lines (0 for all)")
	f.BoolVar(&qf.summary, "summary", false, "list stored patterns with counts")
	f.BoolVar(&qf.runs, "runs", false, "list ingested runs")
	cmd.MarkFlagsMutuallyExclusive("summary", "runs")
	return cmd
}

func runQuery(cmd *cobra.Command, qf *queryFlags) error {
	ctx := cmd.Context()
	file, err := config.Load(configPath)
	if err != nil {
		return errors.Errorf("config: %w", err)
	}

	s, err := store.NewDuckDBStore(config.ResolveDB(qf.db, file))
	if err != nil {
		return errors.Errorf("store: %w", err)
	}
	defer func() { _ = s.Close() }()
	if err := s.Init(ctx); err != nil {
		return errors.Errorf("store init: %w", err)
	}

	q := querier.NewQuerier(s)
	out := cmd.OutOrStdout()

	switch {
	case qf.summary:
		summaries, err := q.Summary(ctx)
		if err != nil {
			return errors.Errorf("query: %w", err)
		}
		fmt.Fprintf(out, "%-36s %-8s %s\n", "ID", "COUNT", "PATTERN")
		for _, ps := range summaries {
			fmt.Fprintf(out, "%-36s %-8d %s\n", ps.PatternID, ps.Count, ps.Pattern)
		}
		return nil
	case qf.runs:
		runs, err := q.Runs(ctx)
		if err != nil {
			return errors.Errorf("query: %w", err)
		}
		for _, r := range runs {
			fmt.Fprintf(out, "%s  %s  %s  %d lines  [%s, %s]\n",
				r.ID, r.CreatedAt.Format(time.RFC3339), r.Source, r.Lines,
				formatTime(r.WindowStart), formatTime(r.WindowEnd))
		}
		return nil
	}

	opts, err := qf.queryOpts()
	if err != nil {
		return err
	}
	entries, err := q.Search(ctx, opts)
	if err != nil {
		return errors.Errorf("query: %w", err)
	}
	writeEntries(out, entries)
	fmt.Fprintf(cmd.ErrOrStderr(), "\n%d entries found\n", len(entries))
	return nil
}

func (qf *queryFlags) queryOpts() (store.QueryOpts, error) {
	opts := store.QueryOpts{
		RunID:     qf.runID,
		PatternID: qf.pattern,
		Contains:  qf.contains,
		Limit:     qf.limit,
	}
	if qf.from != "" {
		t, ok := timestamp.Parse(qf.from)
		if !ok {
			return opts, errors.Errorf("cannot parse --from %q", qf.from)
		}
		opts.From = t
	}
	if qf.to != "" {
		t, ok := timestamp.Parse(qf.to)
		if !ok {
			return opts, errors.Errorf("cannot parse --to %q", qf.to)
		}
		opts.To = t
	}
	if qf.limit < 0 {
		return opts, errors.New("--limit must not be negative")
	}
	return opts, nil
}

func writeEntries(w io.Writer, entries []store.LogEntry) {
	for _, e := range entries {
		mark := ":"
		if e.Context {
			mark = "-"
		}
		fmt.Fprintf(w, "%d%s%s\n", e.LineNumber, mark, e.Raw)
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "*"
	}
	return t.Format(time.RFC3339)
}
