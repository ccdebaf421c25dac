package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/go-errors/errors"
)

var _ Store = (*DuckDBStore)(nil)

// DuckDBStore implements Store using DuckDB.
type DuckDBStore struct {
	db *sql.DB
}

// NewDuckDBStore creates a new DuckDB-backed store.
// Pass dsn="" for in-memory, or a file path for persistent storage.
func NewDuckDBStore(dsn string) (*DuckDBStore, error) {
	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, errors.Errorf("open duckdb: %w", err)
	}
	return &DuckDBStore{db: db}, nil
}

// Init creates the runs, slice_lines and patterns tables if they do not exist.
func (s *DuckDBStore) Init(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id VARCHAR PRIMARY KEY,
			source VARCHAR,
			created_at TIMESTAMP,
			window_start TIMESTAMP,
			window_end TIMESTAMP,
			lines INTEGER
		)`,
		`CREATE SEQUENCE IF NOT EXISTS slice_lines_id_seq START 1`,
		`CREATE TABLE IF NOT EXISTS slice_lines (
			id BIGINT DEFAULT nextval('slice_lines_id_seq'),
			run_id VARCHAR,
			line_number INTEGER,
			timestamp TIMESTAMP,
			raw VARCHAR,
			context BOOLEAN,
			pattern_id VARCHAR
		)`,
		`CREATE TABLE IF NOT EXISTS patterns (
			pattern_id VARCHAR PRIMARY KEY,
			raw_pattern VARCHAR
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return errors.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// InsertRun records a slice run.
func (s *DuckDBStore) InsertRun(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, source, created_at, window_start, window_end, lines)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Source, run.CreatedAt, nullTime(run.WindowStart), nullTime(run.WindowEnd), run.Lines,
	)
	if err != nil {
		return errors.Errorf("insert run: %w", err)
	}
	return nil
}

// Runs returns recorded runs, newest first.
func (s *DuckDBStore) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, source, created_at, window_start, window_end, lines
		 FROM runs ORDER BY created_at DESC, run_id`,
	)
	if err != nil {
		return nil, errors.Errorf("query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var r Run
		var start, end sql.NullTime
		if err := rows.Scan(&r.ID, &r.Source, &r.CreatedAt, &start, &end, &r.Lines); err != nil {
			return nil, errors.Errorf("scan run: %w", err)
		}
		r.WindowStart, r.WindowEnd = start.Time, end.Time
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Errorf("rows err: %w", err)
	}
	return runs, nil
}

// InsertLogBatch stores multiple log entries in a single transaction.
func (s *DuckDBStore) InsertLogBatch(ctx context.Context, entries []LogEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO slice_lines (run_id, line_number, timestamp, raw, context, pattern_id)
		 VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return errors.Errorf("prepare: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.RunID, e.LineNumber, nullTime(e.Timestamp), e.Raw, e.Context, e.PatternID); err != nil {
			return errors.Errorf("exec: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Errorf("commit: %w", err)
	}
	return nil
}

// QueryLogs returns log entries matching the given options.
func (s *DuckDBStore) QueryLogs(ctx context.Context, opts QueryOpts) ([]LogEntry, error) {
	var conditions []string
	var args []any

	if opts.RunID != "" {
		conditions = append(conditions, "run_id = ?")
		args = append(args, opts.RunID)
	}
	if opts.PatternID != "" {
		conditions = append(conditions, "pattern_id = ?")
		args = append(args, opts.PatternID)
	}
	if !opts.From.IsZero() {
		conditions = append(conditions, "timestamp >= ?")
		args = append(args, opts.From)
	}
	if !opts.To.IsZero() {
		conditions = append(conditions, "timestamp <= ?")
		args = append(args, opts.To)
	}
	if opts.Contains != "" {
		conditions = append(conditions, "contains(raw, ?)")
		args = append(args, opts.Contains)
	}

	query := "SELECT id, run_id, line_number, timestamp, raw, context, pattern_id FROM slice_lines"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY run_id, line_number"
	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Errorf("query logs: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanEntries(rows)
}

// InsertPatterns upserts patterns into the patterns table.
func (s *DuckDBStore) InsertPatterns(ctx context.Context, patterns []Pattern) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO patterns (pattern_id, raw_pattern) VALUES (?, ?)`,
	)
	if err != nil {
		return errors.Errorf("prepare: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, p := range patterns {
		if _, err := stmt.ExecContext(ctx, p.PatternID, p.RawPattern); err != nil {
			return errors.Errorf("exec: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Errorf("commit: %w", err)
	}
	return nil
}

// PatternSummaries returns persisted patterns with their line counts, most
// frequent first. Lines whose pattern was never persisted are not counted.
func (s *DuckDBStore) PatternSummaries(ctx context.Context) ([]PatternSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.pattern_id, p.raw_pattern, COUNT(*) AS cnt
		 FROM slice_lines le
		 JOIN patterns p ON le.pattern_id = p.pattern_id
		 GROUP BY p.pattern_id, p.raw_pattern
		 ORDER BY cnt DESC, p.pattern_id`,
	)
	if err != nil {
		return nil, errors.Errorf("pattern summaries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var summaries []PatternSummary
	for rows.Next() {
		var ps PatternSummary
		if err := rows.Scan(&ps.PatternID, &ps.Pattern, &ps.Count); err != nil {
			return nil, errors.Errorf("scan summary: %w", err)
		}
		summaries = append(summaries, ps)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Errorf("rows err: %w", err)
	}
	return summaries, nil
}

// Close closes the underlying database connection.
func (s *DuckDBStore) Close() error {
	return s.db.Close()
}

func scanEntries(rows *sql.Rows) ([]LogEntry, error) {
	var entries []LogEntry
	for rows.Next() {
		var e LogEntry
		var ts sql.NullTime
		if err := rows.Scan(&e.ID, &e.RunID, &e.LineNumber, &ts, &e.Raw, &e.Context, &e.PatternID); err != nil {
			return nil, errors.Errorf("scan entry: %w", err)
		}
		e.Timestamp = ts.Time
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Errorf("rows err: %w", err)
	}
	return entries, nil
}

// nullTime stores the zero time as NULL.
func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
