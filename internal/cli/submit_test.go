package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitCommandPrintsMessages(t *testing.T) {
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"submit", "SHOW STREAMS"})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, out.String(), "no streams")
}

func TestSubmitCommandReportsParseError(t *testing.T) {
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"submit", "SELEKT * FROM nowhere"})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.NotEmpty(t, out.String())
}
