package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/strrl/logslice/pkg/extract"
	"github.com/strrl/logslice/pkg/filter"
	"github.com/strrl/logslice/pkg/timestamp"
	"github.com/strrl/logslice/pkg/transform"
)

// Options are the raw command-line settings.
type Options struct {
	// Path is the log file, or "-" for stdin.
	Path string

	DateRegex string
	DateGrok  string

	Include    []string
	Exclude    []string
	Literal    bool
	IgnoreCase bool

	Start string
	End   string

	Before int
	After  int

	Separator    string
	SeparatorSet bool

	OnBadDate   string
	LineNumbers bool
	Color       string
}

// Settings is the validated result of Build.
type Settings struct {
	Spec        filter.Spec
	Path        string
	LineNumbers bool
	Color       transform.ColorMode
}

// ValidationError lists every configuration problem found.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, "\n")
}

// Build validates o against the config file f and assembles the filter spec.
// All problems are collected; the returned error is a *ValidationError.
// The spec's Transform is left for the caller, which owns the output.
func Build(o Options, f File) (Settings, error) {
	var problems []string
	addf := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	s := Settings{Path: o.Path, LineNumbers: o.LineNumbers}
	spec := filter.Spec{
		Include:    o.Include,
		Exclude:    o.Exclude,
		Literal:    o.Literal,
		IgnoreCase: o.IgnoreCase,
		Before:     o.Before,
		After:      o.After,
	}

	switch {
	case o.Path == "":
		addf("no log file given")
	case o.Path != "-":
		if info, err := os.Stat(o.Path); err != nil {
			addf("cannot read log file: %v", err)
		} else if info.IsDir() {
			addf("log file %s is a directory", o.Path)
		} else if fh, err := os.Open(o.Path); err != nil {
			addf("cannot read log file: %v", err)
		} else {
			_ = fh.Close()
		}
	}

	dp := resolveDatePattern(o, f)
	switch {
	case dp.regex != "" && dp.grok != "":
		addf("both a date regex and a date grok are set in the %s; use one", dp.layer)
	case dp.grok != "":
		if m, err := extract.NewGrok(dp.grok); err != nil {
			addf("invalid date grok %q: %v", dp.grok, err)
		} else {
			spec.Dates = m
		}
	default:
		if m, err := extract.NewRegexp(dp.regex); err != nil {
			addf("invalid date regex %q: %v", dp.regex, err)
		} else {
			spec.Dates = m
		}
	}

	if err := filter.ValidatePatterns(o.Include, o.Literal, o.IgnoreCase); err != nil {
		addf("invalid include pattern: %v", err)
	}
	if err := filter.ValidatePatterns(o.Exclude, o.Literal, o.IgnoreCase); err != nil {
		addf("invalid exclude pattern: %v", err)
	}

	if o.Start != "" {
		t, ok := timestamp.Parse(o.Start)
		if !ok {
			addf("cannot parse start time %q", o.Start)
		}
		spec.Start = t
	}
	if o.End != "" {
		t, ok := timestamp.Parse(o.End)
		if !ok {
			addf("cannot parse end time %q", o.End)
		}
		spec.End = t
	}

	if o.Before < 0 {
		addf("lines before must not be negative")
	}
	if o.After < 0 {
		addf("lines after must not be negative")
	}

	policy, err := extract.ParsePolicy(Resolve(o.OnBadDate, EnvOnBadDate, f.OnBadDate, ""))
	if err != nil {
		addf("%v", err)
	}
	spec.Policy = policy

	color, err := transform.ParseColorMode(Resolve(o.Color, EnvColor, f.Color, string(transform.ColorAuto)))
	if err != nil {
		addf("%v", err)
	}
	s.Color = color

	switch {
	case o.SeparatorSet:
		spec.Separator, spec.UseSeparator = o.Separator, true
	case f.Separator != nil:
		spec.Separator, spec.UseSeparator = *f.Separator, true
	}

	if len(o.Include) == 0 && len(o.Exclude) == 0 && o.Start == "" && o.End == "" {
		addf("nothing to filter on: give at least one of --include, --exclude, --start or --end")
	}

	if len(problems) > 0 {
		return Settings{}, &ValidationError{Problems: problems}
	}
	s.Spec = spec
	return s, nil
}

// ResolveDB returns the DuckDB path from the flag, LOGSLICE_DB, the config
// file or the default.
func ResolveDB(flag string, f File) string {
	return Resolve(flag, EnvDB, f.DB, "logslice.duckdb")
}
