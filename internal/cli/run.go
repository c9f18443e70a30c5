package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/nysm/internal/engine"
	"github.com/roach88/nysm/internal/ir"
	rtoptions "github.com/roach88/nysm/internal/options"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Script string

	// FlowGenerator is not consulted by runEngine: the engine is always
	// built with engine.NewDefault, which uses engine.UUIDv7Generator
	// whatever this field holds.
	FlowGenerator engine.FlowTokenGenerator
}

// NewRunCommand creates the run command: it starts an engine, submits
// every statement in the <script-file> argument in order, then stays up printing rows
// delivered to the console sink of every flow it just deployed until
// interrupted.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <script-file>",
		Short: "Start the engine and run a script of statements",
		Long: `Start the rtengine scheduler, submit every statement in the given
script file in order (a statement ends at a line ending in ";" and may
span several lines; blank lines and lines starting with "--" are
skipped), then watch every deployed flow and
print rows as they arrive until interrupted with Ctrl-C.

Example:
  rtengine run ./queries.sql
  rtengine run ./queries.sql --verbose`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Script = args[0]
			return runEngine(opts, cmd)
		},
	}

	return cmd
}

func runEngine(opts *RunOptions, cmd *cobra.Command) error {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: logLevel}))

	statements, err := loadScript(opts.Script)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read script", err)
	}

	eng, err := engine.NewDefault(logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to construct engine", err)
	}
	go eng.Run()
	defer eng.Shutdown()

	sid := eng.Connect()
	defer eng.Disconnect(sid)

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}

	for i, stmt := range statements {
		res, err := eng.Submit(stmt, map[string]any{
			rtoptions.AutowatchKey:        true,
			rtoptions.SubmitterSessionKey: int64(sid),
		})
		if err != nil {
			return WrapExitError(ExitFailure, fmt.Sprintf("statement %d rejected by engine", i+1), err)
		}
		for _, m := range res.Messages {
			out.VerboseLog("[%d] %s", i+1, m)
			_ = out.Success(m)
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	fmt.Fprintln(cmd.OutOrStdout(), "Engine started. Watching submitted flows for console output.")
	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl-C to stop.")

	console := eng.Console(sid)
	for {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, shutting down", "signal", sig)
			return nil
		case ev, ok := <-console:
			if !ok {
				return nil
			}
			printRow(out, ev)
		}
	}
}

func printRow(out *OutputFormatter, ev engine.ConsoleEvent) {
	data, err := json.Marshal(ir.RowToObj(ev.Row))
	if err != nil {
		_ = out.Error("E_ROW_FORMAT", "failed to format row", err.Error())
		return
	}
	_ = out.Success(fmt.Sprintf("%s: %s", ev.FlowID, string(data)))
}

// loadScript reads a newline-delimited statement script, skipping blank
// lines and "--" comment lines, and joining any statement that spans
// multiple lines until a trailing ";" closes it.
func loadScript(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return parseScript(f)
}

func parseScript(r io.Reader) ([]string, error) {
	var statements []string
	var buf strings.Builder

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(line)
		if strings.HasSuffix(line, ";") {
			stmt := strings.TrimSuffix(strings.TrimSpace(buf.String()), ";")
			statements = append(statements, strings.TrimSpace(stmt))
			buf.Reset()
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if buf.Len() > 0 {
		statements = append(statements, strings.TrimSpace(buf.String()))
	}
	return statements, nil
}
