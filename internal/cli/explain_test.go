package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExplainCommandRendersPlan(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "query.sql")
	require.NoError(t, os.WriteFile(script, []byte(
		"CREATE STREAM orders (id INT, price DOUBLE);\nSELECT id FROM orders;\n",
	), 0o644))

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"explain", script})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Parse tree:")
	assert.Contains(t, out.String(), "Execution plan:")
	assert.Contains(t, out.String(), "SourceStream(orders)")
}

func TestExplainCommandRejectsEmptyScript(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "empty.sql")
	require.NoError(t, os.WriteFile(script, []byte("-- nothing here\n"), 0o644))

	cmd := NewRootCommand()
	cmd.SetArgs([]string{"explain", script})
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
