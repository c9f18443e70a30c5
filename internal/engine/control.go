package engine

import (
	"time"

	"github.com/roach88/nysm/internal/operator"
)

// Op is the sealed interface for every tagged control operation
// (spec.md §4.5). Only the types in this file implement it, mirroring
// the same closed-variant idiom used by ir.PlanNode and types.Type.
type Op interface {
	op()
}

// AddFlowOp deploys a compiled flow under the already-assigned ID.
// Reply carries nil on success or the OpenError that aborted
// deployment.
type AddFlowOp struct {
	ID        string
	Statement string
	Flow      *operator.Flow
	Reply     chan error
}

func (*AddFlowOp) op() {}

// CancelFlowOp asynchronously tears down a running flow.
type CancelFlowOp struct {
	ID string
}

func (*CancelFlowOp) op() {}

// CancelAllOp tears down every active flow.
type CancelAllOp struct {
	Done chan struct{}
}

func (*CancelAllOp) op() {}

// ShutdownOp stops the worker loop after draining CancelAll.
type ShutdownOp struct {
	Done chan struct{}
}

func (*ShutdownOp) op() {}

// NoopOp does nothing; used to wake the worker without side effects
// (e.g. to flush a pending data-work pass after external ingestion).
type NoopOp struct{}

func (*NoopOp) op() {}

// ElementCompleteOp reports that ctx's operator (within flow FlowID)
// has run to natural end.
type ElementCompleteOp struct {
	FlowID string
	Ctx    operator.Context
}

func (*ElementCompleteOp) op() {}

// JoinOp registers a waiter for a flow's termination, or signals
// immediately if the flow is already gone.
type JoinOp struct {
	ID      string
	Timeout time.Duration
	Reply   chan bool
}

func (*JoinOp) op() {}

// FlowInfo is the externally visible snapshot of one active flow.
type FlowInfo struct {
	ID        string
	Statement string
	State     FlowState
}

// ListFlowsOp requests a snapshot of every active flow.
type ListFlowsOp struct {
	Reply chan map[string]FlowInfo
}

func (*ListFlowsOp) op() {}

// WatchFlowOp subscribes a session to a flow's console output.
type WatchFlowOp struct {
	SessionID int64
	FlowID    string
	Reply     chan error
}

func (*WatchFlowOp) op() {}

// UnwatchFlowOp removes a session's subscription.
type UnwatchFlowOp struct {
	SessionID int64
	FlowID    string
	Reply     chan error
}

func (*UnwatchFlowOp) op() {}

// GetWatchListOp requests the flow ids a session currently watches.
type GetWatchListOp struct {
	SessionID int64
	Reply     chan []string
}

func (*GetWatchListOp) op() {}

// ConnectOp registers a new session and returns its id.
type ConnectOp struct {
	Reply chan int64
}

func (*ConnectOp) op() {}

// DisconnectOp drops a session and all its watch subscriptions.
type DisconnectOp struct {
	SessionID int64
	Done      chan struct{}
}

func (*DisconnectOp) op() {}

// consoleLookupOp fetches a session's console channel. Unexported: it
// is Console's implementation detail, not part of the op vocabulary
// spec.md names.
type consoleLookupOp struct {
	sessionID int64
	reply     chan chan ConsoleEvent
}

func (*consoleLookupOp) op() {}
