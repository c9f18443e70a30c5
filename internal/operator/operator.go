package operator

import "github.com/roach88/nysm/internal/ir"

// Operator is the uniform contract every physical plan node satisfies
// (spec.md §4.6). The scheduler never calls TakeEvent after Close.
type Operator interface {
	// Open prepares the operator to receive events. Opening may fail
	// with an I/O or cancellation error (OpenError).
	Open() error

	// Close releases the operator's resources. Close is idempotent from
	// the scheduler's point of view: the scheduler guards against a
	// second call, Close itself does not need to.
	Close() error

	// TakeEvent processes one incoming row, possibly calling
	// Context.Emit to hand a result downstream synchronously.
	TakeEvent(row ir.Row) error

	// CompleteWindow signals that no more events will arrive for the
	// current (or only) window; aggregate operators flush pending
	// partial results here.
	CompleteWindow() error

	// CloseUpstream propagates a natural upstream end into this
	// operator so it can in turn signal its own downstream.
	CloseUpstream() error

	// IsClosed reports whether Close has already run.
	IsClosed() bool

	// Context returns the operator's wired context (DirectCoupled,
	// QueueBacked, or Sink), used by the scheduler to decide how to wire
	// and drain it.
	Context() Context
}

// Base is embedded by every concrete operator to provide the
// open/closed bookkeeping uniformly.
type Base struct {
	Ctx    Context
	closed bool
}

func (b *Base) Context() Context  { return b.Ctx }
func (b *Base) IsClosed() bool    { return b.closed }
func (b *Base) MarkClosed()       { b.closed = true }
