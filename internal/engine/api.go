package engine

import "time"

// Connect registers a new session and returns its id, used to scope
// WatchFlow/UnwatchFlow/GetWatchList and Submit's autowatch option
// (spec.md §4.7).
func (e *Engine) Connect() int64 {
	reply := make(chan int64, 1)
	e.control <- &ConnectOp{Reply: reply}
	return <-reply
}

// Disconnect drops a session and every flow subscription it held.
func (e *Engine) Disconnect(sessionID int64) {
	done := make(chan struct{})
	e.control <- &DisconnectOp{SessionID: sessionID, Done: done}
	<-done
}

// CancelFlow asynchronously tears down a running flow. Canceling an
// unknown or already-closed flow is a no-op (spec.md §7).
func (e *Engine) CancelFlow(flowID string) {
	e.control <- &CancelFlowOp{ID: flowID}
}

// CancelAll tears down every active flow and blocks until done.
func (e *Engine) CancelAll() {
	done := make(chan struct{})
	e.control <- &CancelAllOp{Done: done}
	<-done
}

// Shutdown cancels every active flow, stops ingestion, and terminates
// the worker loop. It blocks until Run has returned.
func (e *Engine) Shutdown() {
	done := make(chan struct{})
	e.control <- &ShutdownOp{Done: done}
	<-done
	<-e.stopped
}

// Join blocks until flowID terminates, or until timeout elapses if
// timeout is positive. It reports false only on timeout; joining an
// already-gone or never-existing flow returns true immediately (spec.md
// §7's "Join treats an unknown flow id as already joined").
func (e *Engine) Join(flowID string, timeout time.Duration) bool {
	reply := make(chan bool, 1)
	e.control <- &JoinOp{ID: flowID, Timeout: timeout, Reply: reply}
	return <-reply
}

// ListFlows returns a snapshot of every active flow.
func (e *Engine) ListFlows() map[string]FlowInfo {
	reply := make(chan map[string]FlowInfo, 1)
	e.control <- &ListFlowsOp{Reply: reply}
	return <-reply
}

// WatchFlow subscribes sessionID to flowID's console output.
func (e *Engine) WatchFlow(sessionID int64, flowID string) error {
	reply := make(chan error, 1)
	e.control <- &WatchFlowOp{SessionID: sessionID, FlowID: flowID, Reply: reply}
	return <-reply
}

// UnwatchFlow removes sessionID's subscription to flowID.
func (e *Engine) UnwatchFlow(sessionID int64, flowID string) error {
	reply := make(chan error, 1)
	e.control <- &UnwatchFlowOp{SessionID: sessionID, FlowID: flowID, Reply: reply}
	return <-reply
}

// GetWatchList returns the flow ids sessionID currently watches.
func (e *Engine) GetWatchList(sessionID int64) []string {
	reply := make(chan []string, 1)
	e.control <- &GetWatchListOp{SessionID: sessionID, Reply: reply}
	return <-reply
}

// Console returns sessionID's console channel, or nil if the session is
// unknown. Safe to call from any goroutine: the lookup is a control op
// answered by the worker loop, which owns the session table. The
// channel itself is created once at Connect time with a fixed capacity,
// and only the worker loop ever sends on it.
func (e *Engine) Console(sessionID int64) chan ConsoleEvent {
	reply := make(chan chan ConsoleEvent, 1)
	e.control <- &consoleLookupOp{sessionID: sessionID, reply: reply}
	return <-reply
}
