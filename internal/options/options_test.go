package options

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAcceptsRecognizedKeys(t *testing.T) {
	err := Validate(map[string]any{
		AutowatchKey:        false,
		SubmitterSessionKey: int64(7),
	})
	require.NoError(t, err)
}

func TestValidateAcceptsUnknownKeys(t *testing.T) {
	err := Validate(map[string]any{"future.option": "anything"})
	require.NoError(t, err)
}

func TestValidateRejectsWrongType(t *testing.T) {
	err := Validate(map[string]any{AutowatchKey: "not-a-bool"})
	require.Error(t, err)
	var oe *Error
	require.ErrorAs(t, err, &oe)
}

func TestParseStringsConvertsRecognizedKeys(t *testing.T) {
	out, err := ParseStrings(map[string]string{
		AutowatchKey:        "false",
		SubmitterSessionKey: "42",
		"custom.key":        "value",
	})
	require.NoError(t, err)
	assert.Equal(t, false, out[AutowatchKey])
	assert.Equal(t, int64(42), out[SubmitterSessionKey])
	assert.Equal(t, "value", out["custom.key"])
}

func TestParseStringsRejectsBadBool(t *testing.T) {
	_, err := ParseStrings(map[string]string{AutowatchKey: "maybe"})
	require.Error(t, err)
}
