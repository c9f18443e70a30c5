package operator

import "github.com/roach88/nysm/internal/ir"

// Context is the tagged variant every operator's emit() is wired
// through (spec.md §3). Every context also carries a ControlPoster back
// to the scheduler's shared control queue, for posting ElementComplete.
type Context interface {
	// Emit hands a row downstream according to this context's wiring
	// policy.
	Emit(row ir.Row) error

	// Poster returns the shared control-queue handle used to post
	// ElementComplete when this context's operator runs to natural end.
	Poster() ControlPoster
}

// ControlPoster is the narrow interface a Context uses to notify the
// scheduler of an ElementComplete event, without importing the
// scheduler package itself.
type ControlPoster interface {
	PostElementComplete(ctx Context)
}

// SubscriberSink is the narrow interface a Sink context uses to route
// rows to a flow's watching sessions, without holding a back-pointer to
// the flow itself.
type SubscriberSink interface {
	Publish(row ir.Row)
}

// DirectCoupled is a synchronous handoff: Emit calls the downstream
// operator's TakeEvent inline, preserving source-to-sink ordering for a
// single operator chain.
type DirectCoupled struct {
	Downstream Operator
	control    ControlPoster
}

// NewDirectCoupled constructs a DirectCoupled context.
func NewDirectCoupled(downstream Operator, control ControlPoster) *DirectCoupled {
	return &DirectCoupled{Downstream: downstream, control: control}
}

func (c *DirectCoupled) Emit(row ir.Row) error {
	return c.Downstream.TakeEvent(row)
}

func (c *DirectCoupled) Poster() ControlPoster { return c.control }

// QueueBacked appends to an operator-owned bounded queue; the scheduler
// dequeues and drives TakeEvent on the downstream operator.
type QueueBacked struct {
	Downstream Operator
	Queue      *Queue
	control    ControlPoster
}

// NewQueueBacked constructs a QueueBacked context with a bounded queue
// of the given capacity feeding downstream.
func NewQueueBacked(downstream Operator, capacity int, control ControlPoster) *QueueBacked {
	return &QueueBacked{
		Downstream: downstream,
		Queue:      NewQueue(downstream, capacity),
		control:    control,
	}
}

func (c *QueueBacked) Emit(row ir.Row) error {
	c.Queue.Enqueue(row)
	return nil
}

func (c *QueueBacked) Poster() ControlPoster { return c.control }

// Sink is a terminal context: Emit routes to the flow's subscriber set
// (or, for a named memory output, to the store — see internal/store's
// Sink implementation of SubscriberSink).
type Sink struct {
	Subscribers SubscriberSink
	control     ControlPoster
}

// NewSink constructs a Sink context.
func NewSink(subscribers SubscriberSink, control ControlPoster) *Sink {
	return &Sink{Subscribers: subscribers, control: control}
}

func (c *Sink) Emit(row ir.Row) error {
	c.Subscribers.Publish(row)
	return nil
}

func (c *Sink) Poster() ControlPoster { return c.control }

// DownstreamOf returns the operator a context hands events to next, for
// contexts that have one. Sink contexts are terminal and return
// (nil, false) — the scheduler treats that as the end of the chain.
func DownstreamOf(ctx Context) (Operator, bool) {
	switch c := ctx.(type) {
	case *DirectCoupled:
		return c.Downstream, true
	case *QueueBacked:
		return c.Downstream, true
	default:
		return nil, false
	}
}
