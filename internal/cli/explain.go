package cli

import (
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/nysm/internal/engine"
)

// ExplainOptions holds flags for the explain command.
type ExplainOptions struct {
	*RootOptions
}

// NewExplainCommand creates the explain command: it runs every setup
// statement in a script to build up the catalog, then submits the
// script's final statement wrapped in EXPLAIN (if it isn't already) and
// prints the resulting parse tree and execution plan.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExplainOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "explain <script-file>",
		Short: "Show the parse tree and execution plan for a query",
		Long: `Explain runs every statement in script-file except the last to build
up the stream catalog (CREATE STREAM, typically), then submits the
last statement wrapped in EXPLAIN and prints the resulting parse tree
and execution plan.

Example:
  rtengine explain ./query.sql`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return explainOnce(opts, args[0], cmd)
		},
	}

	return cmd
}

func explainOnce(opts *ExplainOptions, scriptPath string, cmd *cobra.Command) error {
	statements, err := loadScript(scriptPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read script", err)
	}
	if len(statements) == 0 {
		return NewExitError(ExitCommandError, "script contains no statements")
	}

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

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}

	for _, stmt := range statements[:len(statements)-1] {
		if _, err := eng.Submit(stmt, nil); err != nil {
			return WrapExitError(ExitFailure, "setup statement rejected by engine", err)
		}
	}

	query := statements[len(statements)-1]
	if !strings.HasPrefix(strings.ToUpper(strings.TrimSpace(query)), "EXPLAIN") {
		query = "EXPLAIN " + query
	}

	res, err := eng.Submit(query, nil)
	if err != nil {
		return WrapExitError(ExitFailure, "engine rejected submission", err)
	}
	for _, m := range res.Messages {
		_ = out.Success(m)
	}
	return nil
}
