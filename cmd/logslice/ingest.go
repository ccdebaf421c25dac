package main

import (
	"context"
	"fmt"
	"time"

	"github.com/go-errors/errors"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/strrl/logslice/pkg/config"
	"github.com/strrl/logslice/pkg/extract"
	"github.com/strrl/logslice/pkg/filter"
	"github.com/strrl/logslice/pkg/linesource"
	"github.com/strrl/logslice/pkg/pattern"
	"github.com/strrl/logslice/pkg/store"
)

const ingestBatchSize = 500

func ingestCmd() *cobra.Command {
	ff := &filterFlags{}
	var dbFlag string
	cmd := &cobra.Command{
		Use:   "ingest <logfile>",
		Short: "Slice a log and store the result in DuckDB",
		Long: `Run a slice exactly as the root command does, but store the emitted lines
in DuckDB together with their timestamps and Drain pattern ids. Patterns seen
at least twice are stored too. Query the result with 'logslice query'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, args, ff, dbFlag)
		},
	}
	cmd.Flags().StringVar(&dbFlag, "db", "", "path to DuckDB database (default logslice.duckdb)")
	ff.register(cmd)
	return cmd
}

func runIngest(cmd *cobra.Command, args []string, ff *filterFlags, dbFlag string) error {
	ctx := cmd.Context()
	settings, file, err := ff.settings(cmd, args)
	if err != nil {
		return err
	}
	dbPath := config.ResolveDB(dbFlag, file)

	src, err := linesource.Open(settings.Path)
	if err != nil {
		return errors.Errorf("open log: %w", err)
	}
	defer func() { _ = src.Close() }()

	s, err := store.NewDuckDBStore(dbPath)
	if err != nil {
		return errors.Errorf("store: %w", err)
	}
	defer func() { _ = s.Close() }()

	if err := s.Init(ctx); err != nil {
		return errors.Errorf("store init: %w", err)
	}

	miner, err := pattern.NewMiner()
	if err != nil {
		return errors.Errorf("pattern miner: %w", err)
	}

	eng, err := filter.New(settings.Spec, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	w := &entryWriter{
		ctx:   ctx,
		store: s,
		miner: miner,
		dates: extract.New(settings.Spec.Dates, extract.Silent, nil),
		runID: uuid.NewString(),
	}
	stats, runErr := eng.Run(ctx, src, w)
	// Keep what was emitted before an abort.
	if err := w.flush(); err != nil {
		return err
	}

	templates := miner.Templates(2)
	patterns := make([]store.Pattern, 0, len(templates))
	for _, t := range templates {
		patterns = append(patterns, store.Pattern{PatternID: t.ID.String(), RawPattern: t.Pattern})
	}
	if len(patterns) > 0 {
		if err := s.InsertPatterns(ctx, patterns); err != nil {
			return errors.Errorf("insert patterns: %w", err)
		}
	}

	run := store.Run{
		ID:          w.runID,
		Source:      settings.Path,
		CreatedAt:   time.Now().UTC(),
		WindowStart: settings.Spec.Start,
		WindowEnd:   settings.Spec.End,
		Lines:       w.count,
	}
	if err := s.InsertRun(ctx, run); err != nil {
		return errors.Errorf("insert run: %w", err)
	}

	errOut := cmd.ErrOrStderr()
	fmt.Fprintf(errOut, "Ingested %d lines (%d matches, %d scanned), %d patterns with 2+ matches\n",
		w.count, stats.Matches, stats.Scanned, len(patterns))
	fmt.Fprintf(errOut, "Run: %s\n", w.runID)
	fmt.Fprintf(errOut, "Database: %s\n", dbPath)
	return runErr
}

// entryWriter is a filter.Sink that batches emitted lines into the store.
type entryWriter struct {
	ctx   context.Context
	store store.Store
	miner *pattern.Miner
	dates *extract.Extractor
	runID string
	batch []store.LogEntry
	count int
}

func (w *entryWriter) Emit(line filter.Line) error {
	if line.Kind == filter.Separator {
		return nil
	}
	id, err := w.miner.Add(line.Text)
	if err != nil {
		return errors.Errorf("pattern: %w", err)
	}
	entry := store.LogEntry{
		RunID:      w.runID,
		LineNumber: line.Index + 1,
		Raw:        line.Text,
		Context:    line.Kind == filter.Context,
		PatternID:  id.String(),
	}
	if t, ok := w.dates.Peek(line.Text); ok {
		entry.Timestamp = t
	}
	w.batch = append(w.batch, entry)
	w.count++

	if len(w.batch) >= ingestBatchSize {
		return w.flush()
	}
	return nil
}

func (w *entryWriter) flush() error {
	if len(w.batch) == 0 {
		return nil
	}
	if err := w.store.InsertLogBatch(w.ctx, w.batch); err != nil {
		return errors.Errorf("insert batch: %w", err)
	}
	w.batch = w.batch[:0]
	return nil
}
