// Package linesource provides index-addressed access to the lines of a log.
package linesource

import "io"

// Source is an ordered, read-only sequence of lines addressed by 0-based index.
type Source interface {
	// Len returns the number of lines.
	Len() int
	// Line returns the line at index i without its line terminator.
	// It reports false when i is outside [0, Len()).
	Line(i int) (string, bool)
}

// ReadCloser is a Source that holds an open resource.
type ReadCloser interface {
	Source
	io.Closer
}

// Slice is an in-memory Source.
type Slice []string

var _ ReadCloser = Slice(nil)

// Len returns the number of lines.
func (s Slice) Len() int { return len(s) }

// Line returns the line at index i.
func (s Slice) Line(i int) (string, bool) {
	if i < 0 || i >= len(s) {
		return "", false
	}
	return s[i], true
}

// Close is a no-op.
func (s Slice) Close() error { return nil }
