package engine

import (
	"time"

	"github.com/roach88/nysm/internal/operator"
)

// Run is the scheduler's single worker loop (spec.md §4.5). It blocks
// on the control queue, dispatches the control op it wakes on, then
// runs a bounded pass of data work before waiting again. Run returns
// once a ShutdownOp has been processed. Call it in its own goroutine.
func (e *Engine) Run() {
	defer close(e.stopped)
	for op := range e.control {
		if e.dispatch(op) {
			return
		}
		e.runDataWork()
	}
}

// dispatch applies one control op to worker-owned state. It returns
// true once the loop should exit (after ShutdownOp).
func (e *Engine) dispatch(op Op) bool {
	switch o := op.(type) {
	case *AddFlowOp:
		e.handleAddFlow(o)
	case *CancelFlowOp:
		e.handleCancelFlow(o.ID)
	case *CancelAllOp:
		for id := range e.flows {
			e.handleCancelFlow(id)
		}
		if o.Done != nil {
			close(o.Done)
		}
	case *ShutdownOp:
		for id := range e.flows {
			e.handleCancelFlow(id)
		}
		if e.ingestionStarted {
			if err := e.ingestion.Stop(); err != nil {
				e.logger.Warn("ingestion stop failed", "error", err)
			}
		}
		if o.Done != nil {
			close(o.Done)
		}
		return true
	case *NoopOp:
	case *ElementCompleteOp:
		e.handleElementComplete(o)
	case *JoinOp:
		e.handleJoin(o)
	case *ListFlowsOp:
		o.Reply <- e.snapshotFlows()
	case *WatchFlowOp:
		o.Reply <- e.handleWatch(o.SessionID, o.FlowID)
	case *UnwatchFlowOp:
		o.Reply <- e.handleUnwatch(o.SessionID, o.FlowID)
	case *GetWatchListOp:
		o.Reply <- e.handleGetWatchList(o.SessionID)
	case *ConnectOp:
		o.Reply <- e.handleConnect()
	case *DisconnectOp:
		e.handleDisconnect(o.SessionID)
		if o.Done != nil {
			close(o.Done)
		}
	case *consoleLookupOp:
		if sess, ok := e.sessions[o.sessionID]; ok {
			o.reply <- sess.Console
		} else {
			o.reply <- nil
		}
	}
	return false
}

// runDataWork implements spec.md §4.5's bounded data-work loop
// verbatim: drain every active queue until no queue made progress in a
// full pass, yielding back to the control queue if MAX_STEPS is
// exceeded while control traffic is waiting.
func (e *Engine) runDataWork() {
	for {
		steps := 0
		anyProgress := false
		for _, q := range e.active {
			for {
				row, ok := q.TryDequeue()
				if !ok {
					break
				}
				downstream := q.Downstream()
				if err := downstream.TakeEvent(row); err != nil {
					e.logger.Warn("take_event failed", "error", err)
				}
				steps++
				anyProgress = true
				if steps > maxSteps {
					if len(e.control) > 0 {
						return
					}
					steps = 0
				}
			}
		}
		if !anyProgress {
			return
		}
	}
}

func (e *Engine) handleAddFlow(o *AddFlowOp) {
	if o.Flow == nil || len(o.Flow.All) == 0 {
		// spec.md §4.5: "AddFlow with zero operators is treated as a no-op".
		o.Reply <- nil
		return
	}

	openOrder := reverseBFS(o.Flow)
	var opened []operator.Operator
	for i, op := range openOrder {
		if err := op.Open(); err != nil {
			for j := len(opened) - 1; j >= 0; j-- {
				_ = opened[j].Close()
			}
			o.Reply <- &OpenError{FlowID: o.ID, Operator: operatorLabel(op, i), Err: err}
			return
		}
		opened = append(opened, op)
	}

	tokens, err := e.ensureIngestionStarted(o.Flow)
	if err != nil {
		for i := len(opened) - 1; i >= 0; i-- {
			_ = opened[i].Close()
		}
		o.Reply <- &OpenError{FlowID: o.ID, Operator: "ingestion", Err: err}
		return
	}

	fd := &ActiveFlowData{
		ID:            o.ID,
		Statement:     o.Statement,
		Flow:          o.Flow,
		State:         FlowRunning,
		OpenOrder:     openOrder,
		CloseOrder:    forwardBFS(o.Flow),
		InboundTokens: tokens,
		sinkCount:     1,
	}
	e.flows[o.ID] = fd
	e.registerQueues(o.Flow)
	for _, op := range o.Flow.All {
		e.ctxFlow[op.Context()] = o.ID
	}
	o.Reply <- nil
}

// operatorLabel names an operator for an OpenError. i is its position
// in the open order, purely to disambiguate identical operator kinds
// in the same flow.
func operatorLabel(op operator.Operator, i int) string {
	var kind string
	switch op.(type) {
	case *operator.Source:
		kind = "source"
	case *operator.Project:
		kind = "project"
	case *operator.Filter:
		kind = "filter"
	case *operator.Aggregate:
		kind = "aggregate"
	case *operator.Join:
		kind = "join"
	case *operator.Output:
		kind = "output"
	default:
		kind = "operator"
	}
	return kind + "#" + fmtInt(int64(i))
}

func (e *Engine) ensureIngestionStarted(flow *operator.Flow) (map[string]int64, error) {
	if len(flow.Inbound) == 0 {
		return nil, nil
	}
	if !e.ingestionStarted {
		if err := e.ingestion.Start(); err != nil {
			return nil, err
		}
		e.ingestionStarted = true
	}
	tokens := make(map[string]int64, len(flow.Inbound))
	for stream, q := range flow.Inbound {
		tok, err := e.ingestion.BindSink(stream, q)
		if err != nil {
			return nil, err
		}
		tokens[stream] = tok
	}
	return tokens, nil
}

func (e *Engine) registerQueues(flow *operator.Flow) {
	for _, q := range flow.Inbound {
		e.active = append(e.active, q)
	}
	for _, op := range flow.All {
		if qb, ok := op.Context().(*operator.QueueBacked); ok {
			e.active = append(e.active, qb.Queue)
		}
	}
}

func (e *Engine) unregisterQueues(flow *operator.Flow) {
	drop := make(map[*operator.Queue]bool)
	for _, q := range flow.Inbound {
		drop[q] = true
	}
	for _, op := range flow.All {
		if qb, ok := op.Context().(*operator.QueueBacked); ok {
			drop[qb.Queue] = true
		}
	}
	kept := e.active[:0]
	for _, q := range e.active {
		if !drop[q] {
			kept = append(kept, q)
		}
	}
	e.active = kept
}

func (e *Engine) handleCancelFlow(id string) {
	fd, ok := e.flows[id]
	if !ok {
		e.logger.Info("cancel of unknown flow ignored", "flow_id", id)
		return
	}
	if fd.State == FlowClosed {
		return
	}
	fd.State = FlowCanceling

	for stream, q := range fd.Flow.Inbound {
		_ = e.ingestion.DropSink(stream, fd.InboundTokens[stream])
		q.Close()
	}
	for _, op := range fd.CloseOrder {
		if op.IsClosed() {
			continue
		}
		if err := op.Close(); err != nil {
			e.logger.Warn("close failed", "flow_id", id, "error", err)
		}
	}
	e.unregisterQueues(fd.Flow)
	for _, op := range fd.Flow.All {
		delete(e.ctxFlow, op.Context())
	}

	fd.State = FlowClosed
	fd.signalWaiters()
	delete(e.flows, id)
}

func (e *Engine) handleElementComplete(o *ElementCompleteOp) {
	e.active = removeQueueForContext(e.active, o.Ctx)

	if _, isSink := o.Ctx.(*operator.Sink); isSink {
		if o.FlowID == "" {
			return
		}
		fd, ok := e.flows[o.FlowID]
		if !ok {
			return
		}
		fd.sinksComplete++
		if fd.sinksComplete >= fd.sinkCount {
			e.handleCancelFlow(o.FlowID)
		}
		return
	}

	downstream, ok := operator.DownstreamOf(o.Ctx)
	if !ok || downstream == nil {
		return
	}
	if err := downstream.CompleteWindow(); err != nil {
		e.logger.Warn("complete_window failed", "error", err)
	}
	if err := downstream.CloseUpstream(); err != nil {
		e.logger.Warn("close_upstream failed", "error", err)
	}
}

func removeQueueForContext(active []*operator.Queue, ctx operator.Context) []*operator.Queue {
	qb, ok := ctx.(*operator.QueueBacked)
	if !ok {
		return active
	}
	kept := active[:0]
	for _, q := range active {
		if q != qb.Queue {
			kept = append(kept, q)
		}
	}
	return kept
}

func (e *Engine) handleJoin(o *JoinOp) {
	fd, ok := e.flows[o.ID]
	if !ok {
		o.Reply <- true
		return
	}
	waiter := make(chan struct{})
	fd.waiters = append(fd.waiters, waiter)

	go func() {
		if o.Timeout <= 0 {
			<-waiter
			o.Reply <- true
			return
		}
		select {
		case <-waiter:
			o.Reply <- true
		case <-time.After(o.Timeout):
			o.Reply <- false
		}
	}()
}

func (e *Engine) snapshotFlows() map[string]FlowInfo {
	out := make(map[string]FlowInfo, len(e.flows))
	for id, fd := range e.flows {
		out[id] = FlowInfo{ID: id, Statement: fd.Statement, State: fd.State}
	}
	return out
}

func (e *Engine) handleWatch(sid int64, fid string) error {
	sess, ok := e.sessions[sid]
	if !ok {
		e.logger.Info("watch from unknown session ignored", "session_id", sid)
		return &ControlError{Code: ErrUnknownSession, ID: fmtInt(sid)}
	}
	fd, ok := e.flows[fid]
	if !ok {
		e.logger.Info("watch of unknown flow ignored", "flow_id", fid)
		return &ControlError{Code: ErrUnknownFlow, ID: fid}
	}
	fd.addSubscriber(sess)
	sess.watched[fid] = true
	return nil
}

func (e *Engine) handleUnwatch(sid int64, fid string) error {
	sess, ok := e.sessions[sid]
	if ok {
		delete(sess.watched, fid)
	}
	fd, ok := e.flows[fid]
	if !ok {
		return nil
	}
	fd.removeSubscriber(sid)
	return nil
}

func (e *Engine) handleGetWatchList(sid int64) []string {
	sess, ok := e.sessions[sid]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(sess.watched))
	for fid := range sess.watched {
		out = append(out, fid)
	}
	return out
}

func (e *Engine) handleConnect() int64 {
	e.nextSessionID++
	id := e.nextSessionID
	e.sessions[id] = newSession(id)
	return id
}

func (e *Engine) handleDisconnect(sid int64) {
	sess, ok := e.sessions[sid]
	if !ok {
		return
	}
	for fid := range sess.watched {
		if fd, ok := e.flows[fid]; ok {
			fd.removeSubscriber(sid)
		}
	}
	delete(e.sessions, sid)
}

func fmtInt(n int64) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
