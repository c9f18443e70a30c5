package engine

import "github.com/roach88/nysm/internal/ir"

// ConsoleEvent is one row delivered to a watching session (spec.md §4.7).
type ConsoleEvent struct {
	FlowID string
	Row    ir.Row
}

// consoleBacklog is the bounded mailbox depth for a session's console.
// A session that stops draining its console falls behind silently
// rather than blocking the scheduler — spec.md §4.7 requires sinks to
// "iterate subscribers under no lock" and never suspend the worker.
const consoleBacklog = 256

// Session is a client's watch identity (spec.md §4.7): it lives
// independently of any flow and owns the console channel flows publish
// rows to while it watches them. All fields here are touched only by
// the scheduler goroutine — sessions are registered and looked up
// exclusively through control ops.
type Session struct {
	ID      int64
	Console chan ConsoleEvent
	watched map[string]bool
}

func newSession(id int64) *Session {
	return &Session{
		ID:      id,
		Console: make(chan ConsoleEvent, consoleBacklog),
		watched: make(map[string]bool),
	}
}

// publish delivers row to the session's console without blocking. A
// full console channel drops the row rather than stall the worker.
func (s *Session) publish(flowID string, row ir.Row) {
	select {
	case s.Console <- ConsoleEvent{FlowID: flowID, Row: row}:
	default:
	}
}

// flowSink is the operator.SubscriberSink wired into a ConsoleOutputNode's
// Sink context. It holds only the flow id; the live subscriber set is
// looked up through the engine at publish time so sessions can watch
// and unwatch without the sink itself being rebuilt (spec.md §9's
// "arena-of-operators... subscribers looked up through the flow handle,
// not a back-pointer graph").
type flowSink struct {
	eng    *Engine
	flowID string
}

func (s *flowSink) Publish(row ir.Row) {
	fd, ok := s.eng.flows[s.flowID]
	if !ok {
		return
	}
	for _, sess := range fd.Subscribers {
		sess.publish(s.flowID, row)
	}
}
