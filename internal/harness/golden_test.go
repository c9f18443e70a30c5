package harness

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/nysm/internal/engine"
)

func TestExplainSelectGolden(t *testing.T) {
	eng, err := engine.NewDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	go eng.Run()
	defer eng.Shutdown()

	_, err = eng.Submit("CREATE STREAM orders (id INT, price DOUBLE)", nil)
	require.NoError(t, err)

	res, err := eng.Submit("EXPLAIN SELECT id FROM orders", nil)
	require.NoError(t, err)
	require.Len(t, res.Messages, 1)

	AssertTextGolden(t, "explain_select_id", res.Messages[0])
}
