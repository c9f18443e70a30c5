// Package operator implements the runtime operator contract every
// physical plan node satisfies, the three context variants that decide
// how an operator hands rows to its downstream, and the bounded
// per-operator queue the scheduler drains.
//
// An operator never holds a direct reference to its owning flow or to
// the scheduler: Context holds a ControlPoster (for posting
// ElementComplete) and, for Sink contexts, a SubscriberSink (for
// routing rows to watching sessions). internal/engine implements both
// interfaces; operator itself stays free of any dependency on flow
// lifecycle, which is what keeps "operators reference their flow,
// flows reference operators" from becoming a reference cycle (spec.md
// §9's cyclic context/flow design note).
package operator
