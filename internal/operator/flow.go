package operator

// Flow is the runtime DAG of operators compiled for one deployed
// statement (LocalFlow, spec.md §3). internal/querysql's physical
// builder constructs one per submitted SELECT; internal/engine's
// scheduler opens, drains, and closes it.
//
// A LocalFlow exclusively owns its operators; an operator exclusively
// owns its context; a context may hold a reference to one downstream
// operator or to the flow's sink-set. Flow itself holds none of that —
// it is just the bag of operators and bookkeeping the scheduler needs
// to find them.
type Flow struct {
	// Root is the terminal sink operator (an Output wired with a Sink
	// context).
	Root Operator

	// Sources are the operators with no upstream — entry points for
	// externally ingested rows. A join has two.
	Sources []Operator

	// All is every operator reachable from Root, each exactly once,
	// including join intake adapters. The scheduler derives open/close
	// order from this set plus each operator's Context().
	All []Operator

	// Inbound maps a source stream name to the bounded queue feeding
	// that source. The scheduler registers these in its active-queue
	// set like any other operator queue; the engine's ingestion path
	// enqueues externally-arriving rows here.
	Inbound map[string]*Queue

	// Edges is the physical DAG's adjacency, {Upstream, Downstream}
	// pairs. The physical builder records these directly from the
	// logical plan rather than inferring them from Context(), since a
	// join's two intake adapters share their parent's Context and would
	// otherwise collapse into a single misleading edge. The scheduler
	// derives open (reverse-topological, sinks first) and close
	// (topological, sources first) order from this slice.
	Edges [][2]Operator
}
