package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/nysm/internal/ast"
	"github.com/roach88/nysm/internal/compiler"
	"github.com/roach88/nysm/internal/engine"
	"github.com/roach88/nysm/internal/parser"
)

func TestExitErrorMessage(t *testing.T) {
	err := WrapExitError(ExitFailure, "boom", errors.New("underlying"))
	assert.Equal(t, "boom: underlying", err.Error())
	assert.Equal(t, "underlying", err.Unwrap().Error())

	bare := NewExitError(ExitCommandError, "bad flag")
	assert.Equal(t, "bad flag", bare.Error())
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "x")))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("not an exit error")))
}

func TestOutputFormatterTextSuccess(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &buf}
	require.NoError(t, f.Success("hello"))
	assert.Equal(t, "hello\n", buf.String())
}

func TestOutputFormatterJSONSuccess(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}
	require.NoError(t, f.Success("hello"))
	assert.JSONEq(t, `{"status":"ok","data":"hello"}`, buf.String())
}

func TestOutputFormatterJSONError(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}
	require.NoError(t, f.Error("E001", "bad thing", "extra"))
	assert.JSONEq(t, `{"status":"error","error":{"code":"E001","message":"bad thing","details":"extra"}}`, buf.String())
}

func TestOutputFormatterVerboseLogRespectsFlag(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Writer: &buf, Verbose: false}
	f.VerboseLog("should not appear")
	assert.Empty(t, buf.String())

	f.Verbose = true
	f.VerboseLog("shown: %d", 42)
	assert.Equal(t, "shown: 42\n", buf.String())
}

func TestErrorCodeClassifiesTypedErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"parse", &parser.ParseError{Message: "bad token", Line: 1, Column: 1}, "E_PARSE"},
		{"type", &compiler.TypeError{Node: "x", Pos: ast.Position{Line: 1, Column: 1}, Message: "nope"}, "E_TYPE"},
		{"plan", &compiler.PlanError{Node: "orders", Message: "no such stream"}, "E_PLAN"},
		{"open", &engine.OpenError{FlowID: "f1", Operator: "source", Err: errors.New("boom")}, "E_OPEN"},
		{"runtime", &engine.RuntimeError{FlowID: "f1", Operator: "source", Err: errors.New("boom")}, "E_RUNTIME"},
		{"control", &engine.ControlError{Code: engine.ErrUnknownFlow, ID: "f1"}, "E_CONTROL"},
		{"command", NewExitError(ExitCommandError, "bad flag"), "E_COMMAND"},
		{"wrapped", WrapExitError(ExitFailure, "setup rejected", &compiler.PlanError{Node: "orders", Message: "no such stream"}), "E_PLAN"},
		{"unknown", errors.New("mystery"), "E_INTERNAL"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ErrorCode(tc.err))
		})
	}
}

func TestErrorResultRendersWrappedExitError(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}
	err := WrapExitError(ExitFailure, "setup statement rejected by engine", &compiler.PlanError{Node: "orders", Message: "no such stream"})
	require.NoError(t, f.ErrorResult(err))
	assert.JSONEq(t, `{"status":"error","error":{"code":"E_PLAN","message":"setup statement rejected by engine","details":"plan error at orders: no such stream"}}`, buf.String())
}

func TestGetErrWriterFallsBackToWriter(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Writer: &buf}
	assert.Same(t, &buf, f.GetErrWriter())

	var errBuf bytes.Buffer
	f.ErrWriter = &errBuf
	assert.Same(t, &errBuf, f.GetErrWriter())
}
