// Package querysql is the physical builder (spec.md §4.4): it lowers a
// logical ir.FlowSpec into a runtime operator.Flow, deciding for each
// edge whether to wire a DirectCoupled, QueueBacked, or Sink context and
// wiring every operator to the scheduler's shared control-queue poster.
package querysql

import (
	"fmt"

	"github.com/roach88/nysm/internal/compiler"
	"github.com/roach88/nysm/internal/ir"
	"github.com/roach88/nysm/internal/operator"
)

// DefaultQueueCapacity is the fixed bounded capacity spec.md §4.4 calls
// for on a QueueBacked context when no override is given.
const DefaultQueueCapacity = 256

// MemorySink resolves a named memory output ("INTO <name>") to the
// operator.SubscriberSink that writes rows into it. Implemented by
// internal/store.Store; kept as an interface here so querysql doesn't
// need to import the storage engine directly.
type MemorySink interface {
	Sink(name string, schema ir.Schema) (operator.SubscriberSink, error)
}

// Deps bundles the physical builder's external wiring: where console
// rows go, where named memory outputs go, and the control-queue poster
// every context must carry back to the scheduler.
type Deps struct {
	ConsoleSink   operator.SubscriberSink
	Memory        MemorySink
	Poster        operator.ControlPoster
	QueueCapacity int
}

func (d Deps) capacity() int {
	if d.QueueCapacity > 0 {
		return d.QueueCapacity
	}
	return DefaultQueueCapacity
}

// Compile lowers spec into a runtime Flow. A DDL/EXPLAIN spec (Root ==
// nil) lowers to an empty Flow — nothing is deployed, matching
// spec.md §4.5's "AddFlow with zero operators is treated as a no-op".
func Compile(spec *ir.FlowSpec, deps Deps) (*operator.Flow, error) {
	if spec.Root == nil {
		return &operator.Flow{}, nil
	}

	nodes := spec.Nodes() // source-first (post-order)
	order := make([]ir.PlanNode, len(nodes))
	for i, n := range nodes {
		order[len(nodes)-1-i] = n // reverse: sink-first, spec.md §4.4
	}

	consumer, fanout := indexConsumers(nodes)

	b := &builder{
		spec:     spec,
		deps:     deps,
		consumer: consumer,
		fanout:   fanout,
		phys:     make(map[ir.PlanNode]operator.Operator, len(nodes)),
		inbound:  make(map[string]*operator.Queue),
	}
	for _, n := range order {
		if err := b.build(n); err != nil {
			return nil, err
		}
	}
	return &operator.Flow{
		Root:    b.phys[spec.Root],
		Sources: b.sources,
		All:     b.all,
		Inbound: b.inbound,
		Edges:   b.edges,
	}, nil
}

// indexConsumers records, for every non-root node, the single logical
// node that consumes its output, plus a fan-out count used to decide
// QueueBacked vs DirectCoupled wiring.
func indexConsumers(nodes []ir.PlanNode) (map[ir.PlanNode]ir.PlanNode, map[ir.PlanNode]int) {
	consumer := make(map[ir.PlanNode]ir.PlanNode)
	fanout := make(map[ir.PlanNode]int)
	for _, n := range nodes {
		for _, in := range n.Inputs() {
			consumer[in] = n
			fanout[in]++
		}
	}
	return consumer, fanout
}

type builder struct {
	spec     *ir.FlowSpec
	deps     Deps
	consumer map[ir.PlanNode]ir.PlanNode
	fanout   map[ir.PlanNode]int

	phys    map[ir.PlanNode]operator.Operator
	sources []operator.Operator
	all     []operator.Operator
	inbound map[string]*operator.Queue
	edges   [][2]operator.Operator
}

func (b *builder) addEdge(upstream, downstream operator.Operator) {
	b.edges = append(b.edges, [2]operator.Operator{upstream, downstream})
}

func (b *builder) build(n ir.PlanNode) error {
	ctx, err := b.contextFor(n)
	if err != nil {
		return err
	}
	op, err := b.physicalFor(n, ctx)
	if err != nil {
		return err
	}
	b.phys[n] = op
	b.all = append(b.all, op)

	if join, ok := op.(*operator.Join); ok {
		b.all = append(b.all, join.Left(), join.Right())
		// Structural edges only: join's actual data edges run
		// source->intake (recorded by the inputs' own contextFor calls)
		// and join->downstream (recorded below, same as any other
		// node). These two keep the Join value itself reachable by the
		// scheduler's traversal so its own Open/Close still fire.
		b.addEdge(join.Left(), join)
		b.addEdge(join.Right(), join)
	}
	if n != b.spec.Root {
		if consumerNode, ok := b.consumer[n]; ok {
			downstream, err := b.downstreamOperator(n, consumerNode)
			if err == nil {
				b.addEdge(op, downstream)
			}
		}
	}
	if src, ok := n.(*ir.SourceStreamNode); ok {
		b.sources = append(b.sources, op)
		b.inbound[src.Stream] = operator.NewQueue(op, b.deps.capacity())
	}
	return nil
}

// contextFor wires n's output edge: Sink for the terminal root,
// otherwise DirectCoupled unless n reorders its own output (aggregate
// window flush, join match emission) or has more than one logical
// consumer, in which case QueueBacked decouples the burst from its
// consumer's draining rate.
func (b *builder) contextFor(n ir.PlanNode) (operator.Context, error) {
	if n == b.spec.Root {
		return b.sinkContext(n)
	}

	consumerNode, ok := b.consumer[n]
	if !ok {
		return nil, &compiler.PlanError{Node: n.Kind(), Message: "physical builder: node has no consumer and is not the flow root"}
	}
	downstream, err := b.downstreamOperator(n, consumerNode)
	if err != nil {
		return nil, err
	}

	if reordersOutput(n) || b.fanout[n] > 1 {
		return operator.NewQueueBacked(downstream, b.deps.capacity(), b.deps.Poster), nil
	}
	return operator.NewDirectCoupled(downstream, b.deps.Poster), nil
}

// downstreamOperator resolves the already-built physical operator n's
// context should emit into. When the consumer is a join, n feeds one of
// the join's two intake adapters rather than the Join value itself.
func (b *builder) downstreamOperator(n, consumerNode ir.PlanNode) (operator.Operator, error) {
	consumerOp, ok := b.phys[consumerNode]
	if !ok {
		return nil, &compiler.PlanError{Node: consumerNode.Kind(), Message: "physical builder: consumer built out of order"}
	}
	joinNode, ok := consumerNode.(*ir.JoinNode)
	if !ok {
		return consumerOp, nil
	}
	join := consumerOp.(*operator.Join)
	switch n {
	case joinNode.Left:
		return join.Left(), nil
	case joinNode.Right:
		return join.Right(), nil
	default:
		return nil, &compiler.PlanError{Node: n.Kind(), Message: "physical builder: join input is neither Left nor Right"}
	}
}

func (b *builder) sinkContext(n ir.PlanNode) (operator.Context, error) {
	switch node := n.(type) {
	case *ir.ConsoleOutputNode:
		if b.deps.ConsoleSink == nil {
			return nil, &compiler.PlanError{Node: "console_output", Message: "physical builder: no console sink wired"}
		}
		return operator.NewSink(b.deps.ConsoleSink, b.deps.Poster), nil
	case *ir.MemoryOutputNode:
		if b.deps.Memory == nil {
			return nil, &compiler.PlanError{Node: "memory_output", Message: "physical builder: no memory store wired"}
		}
		sink, err := b.deps.Memory.Sink(node.Name, node.OutputSchema())
		if err != nil {
			return nil, &compiler.PlanError{Node: node.Name, Message: err.Error()}
		}
		return operator.NewSink(sink, b.deps.Poster), nil
	default:
		return nil, &compiler.PlanError{Node: n.Kind(), Message: "physical builder: flow root is not a terminal sink"}
	}
}

func (b *builder) physicalFor(n ir.PlanNode, ctx operator.Context) (operator.Operator, error) {
	switch node := n.(type) {
	case *ir.SourceStreamNode:
		return operator.NewSource(node.Stream, ctx), nil
	case *ir.ProjectNode:
		return operator.NewProject(node.Columns, ctx), nil
	case *ir.FilterNode:
		return operator.NewFilter(node.Predicate, ctx), nil
	case *ir.AggregateNode:
		return operator.NewAggregate(node.GroupKeys, node.Aggregates, ctx), nil
	case *ir.JoinNode:
		return operator.NewJoin(node.Key, ctx), nil
	case *ir.ConsoleOutputNode, *ir.MemoryOutputNode:
		return operator.NewOutput(ctx), nil
	default:
		return nil, fmt.Errorf("physical builder: unhandled plan node kind %q", n.Kind())
	}
}

// reordersOutput reports whether a node's own output arrives in bursts
// uncorrelated with its input order — a window flush or a join match —
// which spec.md §4.4 calls a "re-ordering boundary" warranting a queue.
func reordersOutput(n ir.PlanNode) bool {
	switch n.(type) {
	case *ir.AggregateNode, *ir.JoinNode:
		return true
	default:
		return false
	}
}
