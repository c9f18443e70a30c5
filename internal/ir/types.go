package ir

import (
	"github.com/roach88/nysm/internal/queryir"
	"github.com/roach88/nysm/internal/types"
)

// Field is one (name, Type) pair of a schema.
type Field struct {
	Name string
	Type types.Type
}

// Schema is the ordered (name, Type) list a plan node's output (or
// input) carries, per spec.md §3.
type Schema []Field

// ColumnType returns the type of the named column, or (nil, false).
func (s Schema) ColumnType(name string) (types.Type, bool) {
	for _, f := range s {
		if f.Name == name {
			return f.Type, true
		}
	}
	return nil, false
}

// Names returns the schema's field names in order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, f := range s {
		names[i] = f.Name
	}
	return names
}

// PlanNode is a sealed interface implemented only by the logical
// plan-node types declared in this file: a FlowSpecification is a DAG of
// these, built by the plan builder and consumed by the physical
// builder.
type PlanNode interface {
	planNode()

	// Inputs returns this node's upstream plan nodes, empty for sources.
	Inputs() []PlanNode

	// OutputSchema returns the node's output schema. It is empty until
	// PropagateSchemas has run.
	OutputSchema() Schema

	// SetOutputSchema fills the schema computed by PropagateSchemas.
	SetOutputSchema(s Schema)

	// Kind names the node variant for EXPLAIN dumps and hashing.
	Kind() string
}

// base is embedded by every PlanNode to provide the schema slot.
type base struct {
	schema Schema
}

func (b *base) OutputSchema() Schema     { return b.schema }
func (b *base) SetOutputSchema(s Schema) { b.schema = s }

// SourceStreamNode reads rows from a declared stream.
type SourceStreamNode struct {
	base
	Stream string
}

func (*SourceStreamNode) planNode()          {}
func (*SourceStreamNode) Inputs() []PlanNode { return nil }
func (*SourceStreamNode) Kind() string       { return "source_stream" }

// ProjectColumn is one output column of a ProjectNode: a label and the
// elaborated expression that computes it.
type ProjectColumn struct {
	Label string
	Expr  queryir.Expr
}

// ProjectNode computes a new row shape from its input.
type ProjectNode struct {
	base
	Input   PlanNode
	Columns []ProjectColumn
}

func (*ProjectNode) planNode()           {}
func (n *ProjectNode) Inputs() []PlanNode { return []PlanNode{n.Input} }
func (*ProjectNode) Kind() string        { return "project" }

// FilterNode drops rows that don't satisfy Predicate.
type FilterNode struct {
	base
	Input     PlanNode
	Predicate queryir.Expr
}

func (*FilterNode) planNode()           {}
func (n *FilterNode) Inputs() []PlanNode { return []PlanNode{n.Input} }
func (*FilterNode) Kind() string        { return "filter" }

// AggregateColumn is one computed aggregate output column.
type AggregateColumn struct {
	Label    string
	Function string // COUNT, SUM, AVG, MIN, MAX
	Arg      queryir.Expr // nil for COUNT(*)
}

// WindowSpec mirrors ast.WindowClause after elaboration into a concrete
// duration.
type WindowSpec struct {
	Tumbling  bool
	SizeNS    int64
	AdvanceNS int64 // only meaningful when !Tumbling (hopping)
}

// AggregateNode groups rows by key expressions and computes aggregate
// columns, optionally windowed.
type AggregateNode struct {
	base
	Input      PlanNode
	GroupKeys  []queryir.Expr
	Aggregates []AggregateColumn
	Window     *WindowSpec
}

func (*AggregateNode) planNode()           {}
func (n *AggregateNode) Inputs() []PlanNode { return []PlanNode{n.Input} }
func (*AggregateNode) Kind() string        { return "aggregate" }

// JoinNode combines two inputs by an equi-join key.
type JoinNode struct {
	base
	Left, Right PlanNode
	Key         queryir.JoinKey
}

func (*JoinNode) planNode()           {}
func (n *JoinNode) Inputs() []PlanNode { return []PlanNode{n.Left, n.Right} }
func (*JoinNode) Kind() string        { return "join" }

// ConsoleOutputNode is a terminal sink routing rows to watching
// sessions.
type ConsoleOutputNode struct {
	base
	Input PlanNode
}

func (*ConsoleOutputNode) planNode()           {}
func (n *ConsoleOutputNode) Inputs() []PlanNode { return []PlanNode{n.Input} }
func (*ConsoleOutputNode) Kind() string        { return "console_output" }

// MemoryOutputNode is a terminal sink writing rows into the named
// memory-output store.
type MemoryOutputNode struct {
	base
	Input PlanNode
	Name  string
}

func (*MemoryOutputNode) planNode()           {}
func (n *MemoryOutputNode) Inputs() []PlanNode { return []PlanNode{n.Input} }
func (*MemoryOutputNode) Kind() string        { return "memory_output" }

// FlowSpec is the complete logical plan for one submitted statement: a
// DAG of PlanNode rooted at a single terminal sink, plus bookkeeping the
// plan builder and scheduler need.
type FlowSpec struct {
	// Statement is the original query text, kept for EXPLAIN dumps and
	// diagnostics.
	Statement string

	// Root is the terminal sink node (ConsoleOutputNode or
	// MemoryOutputNode). Nil for DDL statements, which mutate the symbol
	// table and produce no flow.
	Root PlanNode

	// IsExplain marks a flow built for EXPLAIN: the caller stringifies
	// the spec instead of deploying it (spec.md §4.3).
	IsExplain bool
}

// Nodes returns every PlanNode reachable from Root exactly once, in
// topological post-order: every node after all of its inputs, so
// sources come first and Root last. Used by PropagateSchemas, and by
// the physical builder, which reverses it into a sink-first walk.
func (f *FlowSpec) Nodes() []PlanNode {
	if f.Root == nil {
		return nil
	}
	var out []PlanNode
	seen := make(map[PlanNode]bool)
	var walk func(n PlanNode)
	walk = func(n PlanNode) {
		if n == nil || seen[n] {
			return
		}
		seen[n] = true
		for _, in := range n.Inputs() {
			walk(in)
		}
		out = append(out, n)
	}
	walk(f.Root)
	return out
}
