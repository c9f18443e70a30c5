package harness

import (
	"fmt"

	"github.com/roach88/nysm/internal/ir"
)

// Result is the outcome of running one Scenario against a real engine.
type Result struct {
	// Messages holds every submit's resulting message lines, keyed by
	// the step's "as" name (or "setup[N]" for setup statements with no
	// name).
	Messages map[string][]string

	// FlowIDs maps a submit step's "as" name to the flow id the engine
	// assigned, if any was deployed.
	FlowIDs map[string]string

	// FlowStates is a post-run snapshot of every named flow's
	// lifecycle state, taken after Ingest/Collect finish.
	FlowStates map[string]string

	// Console holds the rows delivered to each watched "as" name's
	// session during the collection window, in delivery order.
	Console map[string][]ir.Row

	// Pass is true iff every assertion held.
	Pass bool

	// Errors holds one message per failed assertion.
	Errors []string
}

func newResult() *Result {
	return &Result{
		Messages:   make(map[string][]string),
		FlowIDs:    make(map[string]string),
		FlowStates: make(map[string]string),
		Console:    make(map[string][]ir.Row),
		Pass:       true,
	}
}

func (r *Result) addError(format string, args ...any) {
	r.Pass = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}
