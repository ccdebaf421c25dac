// Package extract pulls timestamps out of log lines and applies the policy
// for lines that have none.
package extract

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-errors/errors"
	"github.com/strrl/logslice/pkg/timestamp"
)

// ErrAborted is returned by Extract under the Abort policy.
var ErrAborted = errors.New("line has no parseable timestamp")

// Policy decides what happens when a line that needs a timestamp has none.
type Policy int

const (
	// Silent treats the line as undated.
	Silent Policy = iota
	// Warn reports the line on the diagnostics writer and carries on.
	Warn
	// Abort reports the line and stops the run.
	Abort
)

func (p Policy) String() string {
	switch p {
	case Warn:
		return "warn"
	case Abort:
		return "abort"
	default:
		return "silent"
	}
}

// ParsePolicy parses "silent", "warn" or "abort". The empty string is Silent.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "silent":
		return Silent, nil
	case "warn":
		return Warn, nil
	case "abort":
		return Abort, nil
	default:
		return Silent, errors.Errorf("unknown bad-date policy %q (want silent, warn or abort)", s)
	}
}

// Extractor finds and parses line timestamps. It is not safe for concurrent use.
type Extractor struct {
	matcher Matcher
	parse   func(string) (time.Time, bool)
	policy  Policy
	diag    io.Writer
	// visited holds the index ranges Extract has seen. Scans are contiguous,
	// so this stays a handful of spans however long the log is.
	visited []span
}

type span struct{ lo, hi int }

// New returns an Extractor that reports under policy to diag.
func New(m Matcher, policy Policy, diag io.Writer) *Extractor {
	if diag == nil {
		diag = io.Discard
	}
	return &Extractor{
		matcher: m,
		parse:   timestamp.Parse,
		policy:  policy,
		diag:    diag,
	}
}

// Peek returns the timestamp of line without applying the policy.
func (e *Extractor) Peek(line string) (time.Time, bool) {
	raw, ok := e.matcher.Match(line)
	if !ok {
		return time.Time{}, false
	}
	return e.parse(raw)
}

// Extract returns the timestamp of the line at index, applying the policy
// when there is none. Each index is reported at most once. Under Abort the
// returned error wraps ErrAborted.
func (e *Extractor) Extract(line string, index int) (time.Time, bool, error) {
	t, ok := e.Peek(line)
	if e.policy == Silent {
		return t, ok, nil
	}
	seen := e.visit(index)
	if ok {
		return t, true, nil
	}

	if !seen {
		fmt.Fprintf(e.diag, "logslice: line %d has no parseable timestamp: %q\n", index+1, line)
	}
	if e.policy == Abort {
		return time.Time{}, false, errors.Errorf("line %d: %w", index+1, ErrAborted)
	}
	return time.Time{}, false, nil
}

// visit records index and reports whether it was already recorded.
func (e *Extractor) visit(index int) bool {
	for _, s := range e.visited {
		if index >= s.lo && index <= s.hi {
			return true
		}
	}
	for i := range e.visited {
		s := &e.visited[i]
		switch index {
		case s.hi + 1:
			s.hi++
			return false
		case s.lo - 1:
			s.lo--
			return false
		}
	}
	e.visited = append(e.visited, span{lo: index, hi: index})
	return false
}
