// Package filter streams a time-bounded, pattern-filtered slice of a log.
//
// An Engine seeks to the start of the requested window with the locate
// package, then walks forward one line at a time. Each line is checked
// against the window, the inclusion patterns and the exclusion patterns, in
// that order. Lines that pass are matches; lines that fail are offered to a
// context buffer, which either emits them as trailing context for the previous
// match or keeps the most recent few as leading context for the next one.
//
// The scan stops at the first dated line past the end of the window once no
// trailing context is owed, so a narrow window near the end of a large file
// touches only a handful of lines outside it.
package filter

import (
	"context"
	"io"
	"log/slog"

	"github.com/go-errors/errors"
	"github.com/strrl/logslice/pkg/extract"
	"github.com/strrl/logslice/pkg/linesource"
	"github.com/strrl/logslice/pkg/locate"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/strrl/logslice/pkg/filter")

// Stats summarizes a run.
type Stats struct {
	// Start is the index the scan began at.
	Start      int
	Scanned    int
	Emitted    int
	Matches    int
	Separators int
}

// Engine runs a Spec against line sources.
type Engine struct {
	spec    Spec
	include patternSet
	exclude patternSet
	diag    io.Writer
}

// New compiles spec's patterns. diag receives bad-date diagnostics.
func New(spec Spec, diag io.Writer) (*Engine, error) {
	if spec.Before < 0 || spec.After < 0 {
		return nil, errors.Errorf("context sizes must not be negative (before=%d, after=%d)", spec.Before, spec.After)
	}
	if spec.TimeFiltered() && spec.Dates == nil {
		return nil, errors.New("time filtering needs a date pattern")
	}
	include, err := compilePatterns(spec.Include, spec.Literal, spec.IgnoreCase)
	if err != nil {
		return nil, errors.Errorf("include: %w", err)
	}
	exclude, err := compilePatterns(spec.Exclude, spec.Literal, spec.IgnoreCase)
	if err != nil {
		return nil, errors.Errorf("exclude: %w", err)
	}
	if diag == nil {
		diag = io.Discard
	}
	return &Engine{spec: spec, include: include, exclude: exclude, diag: diag}, nil
}

// Run scans src and sends emitted lines to sink. A window that lies outside
// the source's time span, or a source with no dated lines, yields no output
// and no error. Under the Abort policy the returned error wraps
// extract.ErrAborted; lines emitted before it stand.
func (e *Engine) Run(ctx context.Context, src linesource.Source, sink Sink) (Stats, error) {
	_, span := tracer.Start(ctx, "filter.Run")
	defer span.End()

	st, err := e.run(src, sink, span)
	span.SetAttributes(
		attribute.Int("logslice.start_index", st.Start),
		attribute.Int("logslice.scanned", st.Scanned),
		attribute.Int("logslice.emitted", st.Emitted),
		attribute.Int("logslice.matches", st.Matches),
	)
	if err != nil {
		span.RecordError(err)
	}
	slog.Debug("scan finished", "start", st.Start, "scanned", st.Scanned, "emitted", st.Emitted, "matches", st.Matches)
	return st, err
}

func (e *Engine) run(src linesource.Source, sink Sink, span trace.Span) (Stats, error) {
	var st Stats
	if src.Len() == 0 {
		return st, nil
	}

	spec := e.spec
	timed := spec.TimeFiltered()
	var ex *extract.Extractor
	start, end := spec.Start, spec.End

	if timed {
		ex = extract.New(spec.Dates, spec.Policy, e.diag)
		b, ok, err := locate.FindBounds(src, ex)
		if err != nil {
			return st, err
		}
		if !ok {
			span.AddEvent("no dated lines")
			return st, nil
		}
		if start.IsZero() {
			start = b.First.Time
		}
		if end.IsZero() {
			end = b.Last.Time
		}
		if end.Before(b.First.Time) || start.After(b.Last.Time) {
			span.AddEvent("window outside log span")
			return st, nil
		}
		st.Start = locate.Locate(src, ex, start, b)
	}
	st.Start = max(st.Start-spec.Before, 0)

	out := emitter{sink: sink, spec: spec, last: -1, stats: &st}
	// A window can never hold more lines than the source.
	buf := newContextBuffer(min(spec.Before, src.Len()), spec.After)

	for i := st.Start; ; i++ {
		line, ok := src.Line(i)
		if !ok {
			break
		}
		st.Scanned++

		if timed {
			t, dated, err := ex.Extract(line, i)
			if err != nil {
				return st, err
			}
			// Past the window only owed trailing context is emitted.
			if dated && t.After(end) && !buf.owesTrailing() {
				break
			}
			if !dated || t.Before(start) || t.After(end) {
				if err := out.offer(buf, line, i); err != nil {
					return st, err
				}
				continue
			}
		}

		if !e.include.empty() && !e.include.any(line) {
			if err := out.offer(buf, line, i); err != nil {
				return st, err
			}
			continue
		}
		if e.exclude.any(line) {
			if err := out.offer(buf, line, i); err != nil {
				return st, err
			}
			continue
		}

		for _, c := range buf.flush() {
			if err := out.emit(c.text, c.index, Context); err != nil {
				return st, err
			}
		}
		if err := out.emit(line, i, Match); err != nil {
			return st, err
		}
		st.Matches++
		buf.arm()
	}
	return st, nil
}

// emitter applies the separator rule and the transform hook.
type emitter struct {
	sink  Sink
	spec  Spec
	last  int
	stats *Stats
}

func (o *emitter) offer(buf *contextBuffer, line string, index int) error {
	if buf.offer(line, index) {
		return o.emit(line, index, Context)
	}
	return nil
}

func (o *emitter) emit(line string, index int, kind Kind) error {
	if o.spec.UseSeparator && o.last >= 0 && index != o.last+1 {
		if err := o.sink.Emit(Line{Index: -1, Text: o.spec.Separator, Kind: Separator}); err != nil {
			return err
		}
		o.stats.Separators++
	}
	if o.spec.Transform != nil {
		line = o.spec.Transform(line, index)
	}
	if err := o.sink.Emit(Line{Index: index, Text: line, Kind: kind}); err != nil {
		return err
	}
	o.last = index
	o.stats.Emitted++
	return nil
}
