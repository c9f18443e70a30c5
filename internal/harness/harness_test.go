package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunFiltersRowsBelowThreshold(t *testing.T) {
	scenario := &Scenario{
		Name: "orders_filter",
		Setup: []string{
			"CREATE STREAM orders (id INT, price DOUBLE)",
		},
		Submit: []SubmitStep{
			{Query: "SELECT id, price FROM orders WHERE price > 10", As: "main"},
		},
		Ingest: []IngestStep{
			{Stream: "orders", Row: map[string]any{"id": 1, "price": 42.5}},
			{Stream: "orders", Row: map[string]any{"id": 2, "price": 1.0}},
		},
		Watch: []string{"main"},
		Assertions: []Assertion{
			{Type: AssertConsoleCount, Flow: "main", Count: 1},
			{Type: AssertConsoleField, Flow: "main", Index: 0, Field: "id", Value: 1},
			{Type: AssertFlowState, Flow: "main", State: "RUNNING"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "unexpected failures: %v", result.Errors)
	assert.Len(t, result.Console["main"], 1)
}

func TestRunReportsParseErrorAsMessage(t *testing.T) {
	scenario := &Scenario{
		Name: "bad_query",
		Submit: []SubmitStep{
			{Query: "SELEKT * FROM nowhere", As: "bad"},
		},
		Assertions: []Assertion{
			{Type: AssertMessageContains, Step: "bad", Contains: ""},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Messages["bad"])
	assert.Empty(t, result.FlowIDs["bad"])
}

func TestEvaluateAssertionsFailsOnMismatch(t *testing.T) {
	result := newResult()
	result.Console["main"] = nil
	EvaluateAssertions(result, []Assertion{
		{Type: AssertConsoleCount, Flow: "main", Count: 3},
	})
	assert.False(t, result.Pass)
	assert.Len(t, result.Errors, 1)
}
