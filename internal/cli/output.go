package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/nysm/internal/compiler"
	"github.com/roach88/nysm/internal/engine"
	"github.com/roach88/nysm/internal/parser"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Runtime failure (engine error, submit rejected, etc.)
	ExitCommandError = 2 // Command error (bad flags, missing script file, etc.)
)

// ExitError represents an error with a specific exit code. Use this to
// return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error, defaulting to
// ExitFailure if err is not an *ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text rendering for CLI output.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer
	Verbose   bool
}

// CLIResponse is the standard JSON response envelope for CLI output.
type CLIResponse struct {
	Status string      `json:"status"` // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`
	Error  *CLIError   `json:"error,omitempty"`
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// ErrorCode classifies err against rtengine's own typed-error taxonomy
// (SPEC_FULL.md §A) so CLIError.Code names a real failure category
// instead of a made-up placeholder. errors.As unwraps through
// *ExitError, since every RunE in this package returns errors wrapped
// that way.
func ErrorCode(err error) string {
	var parseErr *parser.ParseError
	if errors.As(err, &parseErr) {
		return "E_PARSE"
	}
	var typeErr *compiler.TypeError
	if errors.As(err, &typeErr) {
		return "E_TYPE"
	}
	var planErr *compiler.PlanError
	if errors.As(err, &planErr) {
		return "E_PLAN"
	}
	var openErr *engine.OpenError
	if errors.As(err, &openErr) {
		return "E_OPEN"
	}
	var runtimeErr *engine.RuntimeError
	if errors.As(err, &runtimeErr) {
		return "E_RUNTIME"
	}
	var controlErr *engine.ControlError
	if errors.As(err, &controlErr) {
		return "E_CONTROL"
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Code == ExitCommandError {
		return "E_COMMAND"
	}
	return "E_INTERNAL"
}

// ErrorResult reports err through f using the code ErrorCode assigns
// it, unwrapping an *ExitError's Message/Err pair so JSON output
// carries the same text the text-format path would print.
func (f *OutputFormatter) ErrorResult(err error) error {
	message := err.Error()
	var details interface{}
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err != nil {
		message = exitErr.Message
		details = exitErr.Err.Error()
	}
	return f.Error(ErrorCode(err), message, details)
}

// VerboseLog outputs a message only if verbose mode is enabled.
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	w := f.GetErrWriter()
	fmt.Fprintf(w, format+"\n", args...)
}

// GetErrWriter returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
