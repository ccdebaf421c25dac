package filter

import (
	"time"

	"github.com/strrl/logslice/pkg/extract"
)

// Transform rewrites an emitted line. index is the line's 0-based position.
type Transform func(line string, index int) string

// Spec configures one run. The zero Start and End leave that side of the
// window open; time filtering is active when either is set.
type Spec struct {
	// Dates locates the timestamp in a line. Required when Start or End is set.
	Dates extract.Matcher
	// Policy applies to lines without a timestamp while time filtering.
	Policy extract.Policy

	// Include lists patterns of which a line must match at least one.
	// An empty list admits every line.
	Include []string
	// Exclude lists patterns any of which rejects a line.
	Exclude []string
	// Literal matches patterns as plain substrings instead of regular expressions.
	Literal    bool
	IgnoreCase bool

	Start time.Time
	End   time.Time

	Before int
	After  int

	// Separator is emitted between non-adjacent blocks when UseSeparator is set.
	Separator    string
	UseSeparator bool

	Transform Transform
}

// TimeFiltered reports whether a start or end bound is set.
func (s Spec) TimeFiltered() bool {
	return !s.Start.IsZero() || !s.End.IsZero()
}
