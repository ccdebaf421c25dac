package filter

import (
	"regexp"
	"slices"
	"strings"

	"github.com/go-errors/errors"
)

type matcher func(string) bool

// patternSet ORs a list of patterns, trying the shortest first so cheap
// patterns fail fast.
type patternSet struct {
	matchers []matcher
}

func compilePatterns(patterns []string, literal, ignoreCase bool) (patternSet, error) {
	sorted := slices.Clone(patterns)
	slices.SortStableFunc(sorted, func(a, b string) int { return len(a) - len(b) })

	var set patternSet
	for _, p := range sorted {
		if literal && !ignoreCase {
			set.matchers = append(set.matchers, func(line string) bool {
				return strings.Contains(line, p)
			})
			continue
		}

		expr := p
		if literal {
			expr = regexp.QuoteMeta(p)
		}
		if ignoreCase {
			expr = "(?i)" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return patternSet{}, errors.Errorf("pattern %q: %w", p, err)
		}
		set.matchers = append(set.matchers, re.MatchString)
	}
	return set, nil
}

func (s patternSet) empty() bool { return len(s.matchers) == 0 }

func (s patternSet) any(line string) bool {
	for _, m := range s.matchers {
		if m(line) {
			return true
		}
	}
	return false
}

// ValidatePatterns reports the first pattern that does not compile.
func ValidatePatterns(patterns []string, literal, ignoreCase bool) error {
	_, err := compilePatterns(patterns, literal, ignoreCase)
	return err
}
