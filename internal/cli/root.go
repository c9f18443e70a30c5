package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags shared by every subcommand.
type RootOptions struct {
	Verbose bool
	Format  string // "text" | "json"
}

// ValidFormats lists the output formats every subcommand accepts.
var ValidFormats = []string{"text", "json"}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rtengine",
		Short: "rtengine - a continuous-query dataflow engine",
		Long:  "rtengine compiles SQL-like continuous queries into a dataflow graph and runs it against a live stream of ingested rows.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return invalidFormatError(opts.Format)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json)")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewSubmitCommand(opts))
	cmd.AddCommand(NewExplainCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// invalidFormatError reports an unrecognized --format value as an
// *ExitError rather than a bare fmt.Errorf, so it carries the same
// command-error exit code and ErrorCode classification ("E_COMMAND")
// as every other command-line validation failure in this package.
func invalidFormatError(format string) *ExitError {
	return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", format, ValidFormats))
}

// Execute runs the rtengine command tree and returns the process exit
// code. On failure it renders the error through an OutputFormatter
// built from whatever --format the user passed (falling back to
// "text" if parsing never got that far), so a --format=json invocation
// gets a CLIResponse envelope on both the success and error path
// instead of a bare line on stderr.
func Execute(args []string) int {
	opts := &RootOptions{}
	cmd := newRootCommand(opts)
	cmd.SetArgs(args)

	if err := cmd.Execute(); err != nil {
		out := &OutputFormatter{Format: opts.Format, Writer: os.Stdout, ErrWriter: os.Stderr, Verbose: opts.Verbose}
		if out.Format == "" {
			out.Format = "text"
		}
		_ = out.ErrorResult(err)
		return GetExitCode(err)
	}
	return ExitSuccess
}

// NewRootCommand builds the rtengine root command with args left for
// cobra to read from os.Args; callers that need the exit-code-aware
// error rendering Execute provides should call Execute instead.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}
