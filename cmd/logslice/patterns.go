package main

import (
	"fmt"

	"github.com/go-errors/errors"
	"github.com/spf13/cobra"
	"github.com/strrl/logslice/pkg/filter"
	"github.com/strrl/logslice/pkg/linesource"
	"github.com/strrl/logslice/pkg/pattern"
)

func patternsCmd() *cobra.Command {
	ff := &filterFlags{}
	var minCount int
	cmd := &cobra.Command{
		Use:   "patterns <logfile>",
		Short: "List Drain templates of a slice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPatterns(cmd, args, ff, minCount)
		},
	}
	cmd.Flags().IntVar(&minCount, "min-count", 1, "only list templates seen at least this many times")
	ff.register(cmd)
	return cmd
}

func runPatterns(cmd *cobra.Command, args []string, ff *filterFlags, minCount int) error {
	settings, _, err := ff.settings(cmd, args)
	if err != nil {
		return err
	}

	src, err := linesource.Open(settings.Path)
	if err != nil {
		return errors.Errorf("open log: %w", err)
	}
	defer func() { _ = src.Close() }()

	miner, err := pattern.NewMiner()
	if err != nil {
		return errors.Errorf("pattern miner: %w", err)
	}
	eng, err := filter.New(settings.Spec, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	sink := filter.SinkFunc(func(l filter.Line) error {
		if l.Kind == filter.Separator {
			return nil
		}
		_, err := miner.Add(l.Text)
		return err
	})
	if _, err := eng.Run(cmd.Context(), src, sink); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-36s %-8s %s\n", "ID", "COUNT", "TEMPLATE")
	for _, t := range miner.Templates(minCount) {
		fmt.Fprintf(out, "%-36s %-8d %s\n", t.ID, t.Count, t.Pattern)
	}
	return nil
}
