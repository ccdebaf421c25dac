package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/go-errors/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/strrl/logslice/pkg/config"
	"github.com/strrl/logslice/pkg/extract"
	"github.com/strrl/logslice/pkg/tracing"
)

// Exit statuses.
const (
	exitOK      = 0
	exitFailure = 1
	exitAborted = 2
)

var (
	configPath string
	verbose    bool
)

func main() {
	// Load .env file if present (does not override existing env vars)
	_ = godotenv.Load()

	ctx := context.Background()
	flush := tracing.Init(ctx)

	err := rootCmd().ExecuteContext(ctx)
	flush()

	os.Exit(exitCode(err, os.Stderr))
}

func rootCmd() *cobra.Command {
	ff := &filterFlags{}
	root := &cobra.Command{
		Use:   "logslice [flags] <logfile>",
		Short: "Print a time-bounded, pattern-filtered slice of a log",
		Long: `logslice prints the lines of a log whose timestamps fall inside a window and
that match the inclusion patterns but none of the exclusion patterns, with
grep-style context around each match. The start of the window is found by
interpolation search, so large files are not read from the top.

Use "-" as the log file to read standard input.

Examples:
  logslice -s "2024-01-15 10:00" -t "2024-01-15 10:05" app.log
  logslice -e ERROR -x healthz -C 2 app.log
  logslice --date-grok '%{TIMESTAMP_ISO8601:timestamp}' -e timeout app.log`,
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug})))
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSlice(cmd, args, ff)
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/logslice/config.toml)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug details to stderr")
	ff.register(root)

	root.AddCommand(ingestCmd())
	root.AddCommand(patternsCmd())
	root.AddCommand(queryCmd())
	return root
}

// exitCode reports err to w and maps it to an exit status. Bad-date aborts
// have already been reported by the extractor.
func exitCode(err error, w io.Writer) int {
	if err == nil {
		return exitOK
	}
	if errors.Is(err, extract.ErrAborted) {
		return exitAborted
	}
	var verr *config.ValidationError
	if errors.As(err, &verr) {
		for _, p := range verr.Problems {
			fmt.Fprintf(w, "logslice: %s\n", p)
		}
		return exitFailure
	}
	fmt.Fprintf(w, "logslice: %v\n", err)
	return exitFailure
}
