package operator

import "github.com/roach88/nysm/internal/ir"

// Output is the terminal operator wired with a Sink context: it has no
// transformation of its own, only the routing its Context performs
// (console fan-out to watching sessions, or a named memory-output
// store). ConsoleOutputNode and MemoryOutputNode both lower to an
// Output operator; what differs is which SubscriberSink the physical
// builder wires into the Sink context, not the operator.
type Output struct {
	Base
}

// NewOutput constructs an Output operator wired through ctx (expected
// to be a *Sink, but Output itself doesn't care).
func NewOutput(ctx Context) *Output {
	return &Output{Base: Base{Ctx: ctx}}
}

func (o *Output) Open() error { return nil }

func (o *Output) Close() error {
	o.MarkClosed()
	return nil
}

func (o *Output) TakeEvent(row ir.Row) error {
	return o.Ctx.Emit(row)
}

func (o *Output) CompleteWindow() error { return nil }

func (o *Output) CloseUpstream() error {
	return o.Close()
}
