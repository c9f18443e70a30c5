package harness

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/roach88/nysm/internal/engine"
	"github.com/roach88/nysm/internal/ir"
)

// defaultCollect is how long Run drains watched consoles when a
// scenario doesn't set Collect explicitly.
const defaultCollect = 200 * time.Millisecond

// Run executes scenario against a fresh in-process engine: every setup
// and submit statement runs through Engine.Submit, every ingest step
// through Engine.Ingest, every watched "as" name gets its own session
// subscribed via Engine.WatchFlow, and assertions are evaluated against
// what the engine actually produced.
func Run(scenario *Scenario) (*Result, error) {
	eng, err := engine.NewDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		return nil, fmt.Errorf("harness: construct engine: %w", err)
	}
	go eng.Run()
	defer eng.Shutdown()

	result := newResult()

	for i, stmt := range scenario.Setup {
		res, err := eng.Submit(stmt, nil)
		if err != nil {
			return nil, fmt.Errorf("harness: setup[%d]: %w", i, err)
		}
		result.Messages[fmt.Sprintf("setup[%d]", i)] = res.Messages
	}

	for i, step := range scenario.Submit {
		res, err := eng.Submit(step.Query, step.Options)
		if err != nil {
			return nil, fmt.Errorf("harness: submit[%d]: %w", i, err)
		}
		name := step.As
		if name == "" {
			name = fmt.Sprintf("submit[%d]", i)
		}
		result.Messages[name] = res.Messages
		if res.FlowID != "" {
			result.FlowIDs[name] = res.FlowID
		}
	}

	sessions := make(map[string]int64)
	consoles := make(map[string]chan engine.ConsoleEvent)
	for _, name := range scenario.Watch {
		flowID, ok := result.FlowIDs[name]
		if !ok {
			return nil, fmt.Errorf("harness: watch %q: no such submit step deployed a flow", name)
		}
		sid := eng.Connect()
		if err := eng.WatchFlow(sid, flowID); err != nil {
			return nil, fmt.Errorf("harness: watch %q: %w", name, err)
		}
		sessions[name] = sid
		consoles[name] = eng.Console(sid)
	}

	for i, step := range scenario.Ingest {
		row, err := rowFromMap(step.Row)
		if err != nil {
			return nil, fmt.Errorf("harness: ingest[%d]: %w", i, err)
		}
		if err := eng.Ingest(step.Stream, row); err != nil {
			return nil, fmt.Errorf("harness: ingest[%d]: %w", i, err)
		}
	}

	collect := scenario.Collect
	if collect <= 0 {
		collect = defaultCollect
	}
	deadline := time.After(collect)
drain:
	for len(consoles) > 0 {
		select {
		case <-deadline:
			break drain
		default:
		}
		delivered := false
		for name, ch := range consoles {
			select {
			case ev := <-ch:
				result.Console[name] = append(result.Console[name], ev.Row)
				delivered = true
			default:
			}
		}
		if !delivered {
			select {
			case <-deadline:
				break drain
			case <-time.After(time.Millisecond):
			}
		}
	}

	for name, flowID := range result.FlowIDs {
		if info, ok := eng.ListFlows()[flowID]; ok {
			result.FlowStates[name] = info.State.String()
		} else {
			result.FlowStates[name] = "CLOSED"
		}
	}

	EvaluateAssertions(result, scenario.Assertions)
	return result, nil
}

// EvaluateAssertions checks every assertion against result, recording a
// failure message and clearing Pass for each one that doesn't hold.
func EvaluateAssertions(result *Result, assertions []Assertion) {
	for i, a := range assertions {
		switch a.Type {
		case AssertConsoleCount:
			got := len(result.Console[a.Flow])
			if got != a.Count {
				result.addError("assertions[%d]: console_count(%s) = %d, want %d", i, a.Flow, got, a.Count)
			}
		case AssertConsoleField:
			rows := result.Console[a.Flow]
			if a.Index < 0 || a.Index >= len(rows) {
				result.addError("assertions[%d]: console_field(%s): index %d out of range (%d rows)", i, a.Flow, a.Index, len(rows))
				continue
			}
			val, ok := rows[a.Index].Get(a.Field)
			if !ok {
				result.addError("assertions[%d]: console_field(%s): row %d has no field %q", i, a.Flow, a.Index, a.Field)
				continue
			}
			if !valueEquals(val, a.Value) {
				result.addError("assertions[%d]: console_field(%s): row %d field %q = %v, want %v", i, a.Flow, a.Index, a.Field, val, a.Value)
			}
		case AssertFlowState:
			got := result.FlowStates[a.Flow]
			if got != a.State {
				result.addError("assertions[%d]: flow_state(%s) = %s, want %s", i, a.Flow, got, a.State)
			}
		case AssertMessageContains:
			msgs := result.Messages[a.Step]
			if !anyContains(msgs, a.Contains) {
				result.addError("assertions[%d]: message_contains(%s): none of %v contain %q", i, a.Step, msgs, a.Contains)
			}
		}
	}
}

func anyContains(msgs []string, sub string) bool {
	for _, m := range msgs {
		if contains(m, sub) {
			return true
		}
	}
	return false
}

func contains(s, sub string) bool {
	return len(sub) == 0 || indexOf(s, sub) >= 0
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

// valueEquals compares an ir.Value against an assertion's YAML-decoded
// expected value (string/int/float64/bool).
func valueEquals(v ir.Value, want any) bool {
	switch got := v.(type) {
	case ir.Int:
		n, ok := asInt64(want)
		return ok && int64(got) == n
	case ir.BigInt:
		n, ok := asInt64(want)
		return ok && int64(got) == n
	case ir.Float:
		f, ok := asFloat64(want)
		return ok && float64(got) == f
	case ir.Double:
		f, ok := asFloat64(want)
		return ok && float64(got) == f
	case ir.Str:
		s, ok := want.(string)
		return ok && string(got) == s
	case ir.Bool:
		b, ok := want.(bool)
		return ok && bool(got) == b
	case ir.Null:
		return want == nil
	default:
		return false
	}
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// rowFromMap converts a YAML-decoded field map into an ir.Row, sorting
// keys for a deterministic field order (row content, not order, is what
// operators match on).
func rowFromMap(m map[string]any) (ir.Row, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	row := ir.Row{Fields: make([]string, 0, len(keys)), Values: make([]ir.Value, 0, len(keys))}
	for _, k := range keys {
		v, err := valueFromYAML(m[k])
		if err != nil {
			return ir.Row{}, fmt.Errorf("field %q: %w", k, err)
		}
		row.Fields = append(row.Fields, k)
		row.Values = append(row.Values, v)
	}
	return row, nil
}

func valueFromYAML(v any) (ir.Value, error) {
	switch val := v.(type) {
	case nil:
		return ir.Null{}, nil
	case bool:
		return ir.Bool(val), nil
	case int:
		return ir.Int(val), nil
	case int64:
		return ir.Int(val), nil
	case float64:
		return ir.Double(val), nil
	case string:
		return ir.Str(val), nil
	default:
		return nil, fmt.Errorf("unsupported row value type %T", v)
	}
}
