package engine

import "github.com/roach88/nysm/internal/operator"

// FlowState is a flow's lifecycle stage (spec.md §3 "Lifecycles").
type FlowState int

const (
	FlowDeploying FlowState = iota
	FlowRunning
	FlowCanceling
	FlowClosed
	FlowFailed
)

func (s FlowState) String() string {
	switch s {
	case FlowDeploying:
		return "DEPLOYING"
	case FlowRunning:
		return "RUNNING"
	case FlowCanceling:
		return "CANCELING"
	case FlowClosed:
		return "CLOSED"
	case FlowFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// ActiveFlowData is one deployed flow's runtime record (spec.md §3):
// its id, its operator DAG, the sessions watching it, and the
// join-waiters to signal on termination.
type ActiveFlowData struct {
	ID        string
	Statement string
	Flow      *operator.Flow
	State     FlowState

	Subscribers []*Session

	// OpenOrder and CloseOrder are precomputed once at AddFlow time
	// from Flow.Edges (reverse-topological / topological respectively)
	// so CancelFlow doesn't need to re-derive them under time pressure.
	OpenOrder  []operator.Operator
	CloseOrder []operator.Operator

	// InboundTokens records the BindSink token returned for each inbound
	// stream so CancelFlow can DropSink the exact registration instead
	// of guessing.
	InboundTokens map[string]int64

	// sinkCount and sinksComplete track spec.md §9's "signal flow
	// termination only after the last sink reports ElementComplete"
	// policy for flows with more than one terminal sink context.
	sinkCount     int
	sinksComplete int

	waiters []chan struct{}
}

// addSubscriber registers sess as a watcher if not already present.
func (fd *ActiveFlowData) addSubscriber(sess *Session) bool {
	for _, s := range fd.Subscribers {
		if s.ID == sess.ID {
			return false
		}
	}
	fd.Subscribers = append(fd.Subscribers, sess)
	return true
}

// removeSubscriber drops sess from the watcher set, reporting whether
// it had been present.
func (fd *ActiveFlowData) removeSubscriber(sessID int64) bool {
	for i, s := range fd.Subscribers {
		if s.ID == sessID {
			fd.Subscribers = append(fd.Subscribers[:i], fd.Subscribers[i+1:]...)
			return true
		}
	}
	return false
}

// signalWaiters closes every registered join-waiter channel, unblocking
// any joinFlow call awaiting this flow's termination.
func (fd *ActiveFlowData) signalWaiters() {
	for _, w := range fd.waiters {
		close(w)
	}
	fd.waiters = nil
}
