package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/nysm/internal/engine"
)

// SubmitOptions holds flags for the submit command.
type SubmitOptions struct {
	*RootOptions
}

// NewSubmitCommand creates a one-shot "submit" command: it starts a
// fresh engine, submits a single query, prints the resulting messages,
// and exits without deploying a long-running watch session. Useful for
// CREATE STREAM/DROP/DESCRIBE/SHOW statements that don't need a live
// console feed.
func NewSubmitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SubmitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "submit <query>",
		Short: "Submit a single statement to a fresh engine and print its result",
		Long: `Submit compiles and runs exactly one statement against a freshly
constructed, throwaway engine. Since rtengine keeps no state across
process restarts, submit is only useful for statements that don't
depend on a prior CREATE STREAM (a SELECT here has nothing to read
from) — in practice DESCRIBE/SHOW against an otherwise-empty catalog,
or smoke-testing a query's EXPLAIN output. Use "rtengine run" for a
script of statements sharing one live catalog.

Example:
  rtengine submit "SHOW STREAMS"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return submitOnce(opts, args[0], cmd)
		},
	}

	return cmd
}

func submitOnce(opts *SubmitOptions, query string, cmd *cobra.Command) error {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: logLevel}))

	eng, err := engine.NewDefault(logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to construct engine", err)
	}
	go eng.Run()
	defer eng.Shutdown()

	res, err := eng.Submit(query, nil)
	if err != nil {
		return WrapExitError(ExitFailure, "engine rejected submission", err)
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}
	for _, m := range res.Messages {
		_ = out.Success(m)
	}
	return nil
}
