// Package transform provides line-transform hooks for the filter engine.
package transform

import (
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/go-errors/errors"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/strrl/logslice/pkg/filter"
)

// ColorMode selects when output is styled.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ParseColorMode parses "auto", "always" or "never". The empty string is auto.
func ParseColorMode(s string) (ColorMode, error) {
	switch m := ColorMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ColorAuto, nil
	case ColorAuto, ColorAlways, ColorNever:
		return m, nil
	default:
		return "", errors.Errorf("unknown color mode %q (want auto, always or never)", s)
	}
}

// Enabled reports whether output to f should be styled. Auto honors NO_COLOR
// and styles only terminals.
func (m ColorMode) Enabled(f *os.File) bool {
	switch m {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Chain applies transforms left to right, skipping nil ones.
func Chain(ts ...filter.Transform) filter.Transform {
	ts = slices.DeleteFunc(ts, func(t filter.Transform) bool { return t == nil })
	if len(ts) == 0 {
		return nil
	}
	return func(line string, index int) string {
		for _, t := range ts {
			line = t(line, index)
		}
		return line
	}
}

// LineNumbers prefixes each line with its 1-based number, grep style.
func LineNumbers() filter.Transform {
	return func(line string, index int) string {
		return strconv.Itoa(index+1) + ":" + line
	}
}

// Styler renders ANSI-styled output.
type Styler struct {
	match  lipgloss.Style
	number lipgloss.Style
	sep    lipgloss.Style
}

// NewStyler returns a Styler that always emits ANSI sequences; callers decide
// whether styling is wanted with ColorMode.Enabled.
func NewStyler() *Styler {
	r := lipgloss.NewRenderer(os.Stdout)
	r.SetColorProfile(termenv.ANSI)
	return &Styler{
		match:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("1")),
		number: r.NewStyle().Foreground(lipgloss.Color("2")),
		sep:    r.NewStyle().Foreground(lipgloss.Color("6")),
	}
}

// Separator styles a separator line.
func (s *Styler) Separator(sep string) string {
	if sep == "" {
		return sep
	}
	return s.sep.Render(sep)
}

// LineNumbers is LineNumbers with the number styled.
func (s *Styler) LineNumbers() filter.Transform {
	return func(line string, index int) string {
		return s.number.Render(strconv.Itoa(index+1)) + ":" + line
	}
}

// Highlight styles every occurrence of patterns within a line. Patterns follow
// the same literal and case rules as the filter.
func (s *Styler) Highlight(patterns []string, literal, ignoreCase bool) (filter.Transform, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		expr := p
		if literal {
			expr = regexp.QuoteMeta(p)
		}
		if ignoreCase {
			expr = "(?i)" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, errors.Errorf("highlight %q: %w", p, err)
		}
		res = append(res, re)
	}

	return func(line string, _ int) string {
		spans := matchSpans(line, res)
		if len(spans) == 0 {
			return line
		}
		var b strings.Builder
		prev := 0
		for _, sp := range spans {
			b.WriteString(line[prev:sp[0]])
			b.WriteString(s.match.Render(line[sp[0]:sp[1]]))
			prev = sp[1]
		}
		b.WriteString(line[prev:])
		return b.String()
	}, nil
}

// matchSpans returns the non-empty matches of res in line, sorted and merged
// where they overlap.
func matchSpans(line string, res []*regexp.Regexp) [][2]int {
	var spans [][2]int
	for _, re := range res {
		for _, m := range re.FindAllStringIndex(line, -1) {
			if m[1] > m[0] {
				spans = append(spans, [2]int{m[0], m[1]})
			}
		}
	}
	slices.SortFunc(spans, func(a, b [2]int) int { return a[0] - b[0] })

	merged := spans[:0]
	for _, sp := range spans {
		if n := len(merged); n > 0 && sp[0] <= merged[n-1][1] {
			merged[n-1][1] = max(merged[n-1][1], sp[1])
			continue
		}
		merged = append(merged, sp)
	}
	return merged
}
