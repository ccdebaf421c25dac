package extract

import (
	"regexp"

	"github.com/go-errors/errors"
	"github.com/trivago/grok"
)

// GrokField is the grok capture that holds the timestamp.
const GrokField = "timestamp"

// Matcher finds the timestamp substring in a line.
type Matcher interface {
	Match(line string) (string, bool)
}

// RegexpMatcher yields the first capture group, or the whole match when the
// expression has no groups.
type RegexpMatcher struct {
	re *regexp.Regexp
}

// NewRegexp compiles expr into a RegexpMatcher.
func NewRegexp(expr string) (*RegexpMatcher, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, errors.Errorf("date regex: %w", err)
	}
	return &RegexpMatcher{re: re}, nil
}

// Match returns the captured timestamp text.
func (m *RegexpMatcher) Match(line string) (string, bool) {
	sub := m.re.FindStringSubmatch(line)
	if sub == nil {
		return "", false
	}
	if len(sub) > 1 {
		return sub[1], sub[1] != ""
	}
	return sub[0], sub[0] != ""
}

// GrokMatcher yields the GrokField capture of a grok expression.
type GrokMatcher struct {
	compiled *grok.CompiledGrok
}

// NewGrok compiles a grok expression such as "%{TIMESTAMP_ISO8601:timestamp}".
// The expression must name a capture GrokField.
func NewGrok(expr string) (*GrokMatcher, error) {
	g, err := grok.New(grok.Config{
		NamedCapturesOnly: true,
	})
	if err != nil {
		return nil, errors.Errorf("grok: %w", err)
	}
	c, err := g.Compile(expr)
	if err != nil {
		return nil, errors.Errorf("date grok: %w", err)
	}
	return &GrokMatcher{compiled: c}, nil
}

// Match returns the GrokField capture.
func (m *GrokMatcher) Match(line string) (string, bool) {
	fields := m.compiled.ParseString(line)
	ts, ok := fields[GrokField]
	return ts, ok && ts != ""
}
