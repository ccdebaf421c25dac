package main

import (
	"bufio"
	"os"

	"github.com/go-errors/errors"
	"github.com/spf13/cobra"
	"github.com/strrl/logslice/pkg/config"
	"github.com/strrl/logslice/pkg/filter"
	"github.com/strrl/logslice/pkg/linesource"
	"github.com/strrl/logslice/pkg/transform"
)

func runSlice(cmd *cobra.Command, args []string, ff *filterFlags) error {
	settings, _, err := ff.settings(cmd, args)
	if err != nil {
		return err
	}

	spec, err := decorate(settings, settings.Color.Enabled(os.Stdout))
	if err != nil {
		return err
	}

	src, err := linesource.Open(settings.Path)
	if err != nil {
		return errors.Errorf("open log: %w", err)
	}
	defer func() { _ = src.Close() }()

	eng, err := filter.New(spec, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	out := bufio.NewWriter(cmd.OutOrStdout())
	_, runErr := eng.Run(cmd.Context(), src, filter.NewWriterSink(out))
	// Lines emitted before an abort are still written.
	if err := out.Flush(); err != nil && runErr == nil {
		runErr = errors.Errorf("write output: %w", err)
	}
	return runErr
}

// decorate attaches output transforms to the settings' spec.
func decorate(s config.Settings, color bool) (filter.Spec, error) {
	spec := s.Spec
	if !color {
		if s.LineNumbers {
			spec.Transform = transform.LineNumbers()
		}
		return spec, nil
	}

	styler := transform.NewStyler()
	hl, err := styler.Highlight(spec.Include, spec.Literal, spec.IgnoreCase)
	if err != nil {
		return spec, err
	}
	var numbers filter.Transform
	if s.LineNumbers {
		numbers = styler.LineNumbers()
	}
	spec.Transform = transform.Chain(hl, numbers)
	if spec.UseSeparator {
		spec.Separator = styler.Separator(spec.Separator)
	}
	return spec, nil
}
