package main

import (
	"github.com/go-errors/errors"
	"github.com/spf13/cobra"
	"github.com/strrl/logslice/pkg/config"
)

// filterFlags are the slice flags shared by the root, ingest and patterns
// commands.
type filterFlags struct {
	opts    config.Options
	context int
}

func (ff *filterFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	o := &ff.opts
	f.StringVarP(&o.DateRegex, "date-regex", "r", "", "regex locating the timestamp; first capture group is parsed")
	f.StringVar(&o.DateGrok, "date-grok", "", "grok expression with a %{...:timestamp} field")
	f.StringArrayVarP(&o.Include, "include", "e", nil, "keep lines matching this pattern (repeatable, any may match)")
	f.StringArrayVarP(&o.Exclude, "exclude", "x", nil, "drop lines matching this pattern (repeatable)")
	f.BoolVarP(&o.Literal, "literal", "F", false, "treat patterns as plain text")
	f.BoolVarP(&o.IgnoreCase, "ignore-case", "i", false, "match patterns case-insensitively")
	f.StringVarP(&o.Start, "start", "s", "", "window start (inclusive)")
	f.StringVarP(&o.End, "end", "t", "", "window end (inclusive)")
	f.IntVarP(&o.Before, "before", "B", 0, "lines of context before each match")
	f.IntVarP(&o.After, "after", "A", 0, "lines of context after each match")
	f.IntVarP(&ff.context, "context", "C", 0, "lines of context before and after each match")
	f.StringVar(&o.Separator, "separator", "", "line printed between non-adjacent blocks")
	f.StringVar(&o.OnBadDate, "on-bad-date", "", "undated line policy: silent, warn or abort")
	f.BoolVarP(&o.LineNumbers, "line-number", "n", false, "prefix lines with their line number")
	f.StringVar(&o.Color, "color", "", "highlight output: auto, always or never")
}

// options returns the raw options for args, applying -C where -B or -A were
// not given.
func (ff *filterFlags) options(cmd *cobra.Command, args []string) config.Options {
	o := ff.opts
	if len(args) > 0 {
		o.Path = args[0]
	}
	f := cmd.Flags()
	if f.Changed("context") {
		if !f.Changed("before") {
			o.Before = ff.context
		}
		if !f.Changed("after") {
			o.After = ff.context
		}
	}
	o.SeparatorSet = f.Changed("separator")
	return o
}

// settings loads the config file and validates the flags against it.
func (ff *filterFlags) settings(cmd *cobra.Command, args []string) (config.Settings, config.File, error) {
	file, err := config.Load(configPath)
	if err != nil {
		return config.Settings{}, config.File{}, errors.Errorf("config: %w", err)
	}
	s, err := config.Build(ff.options(cmd, args), file)
	if err != nil {
		return config.Settings{}, config.File{}, err
	}
	return s, file, nil
}
