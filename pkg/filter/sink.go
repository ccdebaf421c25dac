package filter

import (
	"io"

	"github.com/go-errors/errors"
)

// Kind tells why a line was emitted.
type Kind int

const (
	// Context lines surround a match without matching themselves.
	Context Kind = iota
	// Match lines passed every filter.
	Match
	// Separator lines mark a gap between emitted blocks.
	Separator
)

// Line is one emitted record. Separators carry Index -1.
type Line struct {
	Index int
	Text  string
	Kind  Kind
}

// Sink receives emitted lines in order.
type Sink interface {
	Emit(line Line) error
}

// WriterSink writes each line's text followed by a newline.
type WriterSink struct {
	w io.Writer
}

// NewWriterSink returns a Sink writing to w. Buffering is left to the caller.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Emit writes line.Text and a newline.
func (s *WriterSink) Emit(line Line) error {
	if _, err := io.WriteString(s.w, line.Text+"\n"); err != nil {
		return errors.Errorf("write output: %w", err)
	}
	return nil
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Line) error

// Emit calls f.
func (f SinkFunc) Emit(line Line) error { return f(line) }
