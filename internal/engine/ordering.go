package engine

import (
	"github.com/roach88/nysm/internal/dag"
	"github.com/roach88/nysm/internal/operator"
)

// buildGraph turns a flow's explicit edge list into a dag.Graph so the
// scheduler can use that package's BFS/reverse-BFS traversal rather
// than hand-rolling a walk here.
func buildGraph(flow *operator.Flow) *dag.Graph[operator.Operator] {
	g := dag.New[operator.Operator]()
	for _, op := range flow.All {
		g.AddNode(op)
	}
	for _, edge := range flow.Edges {
		g.AddEdge(edge[0], edge[1])
	}
	return g
}

// reverseBFS returns the flow's operators in open order: the sink
// first, then everything feeding it, sources last (spec.md §4.6's
// "physical DAG opens sinks-first, reverse-topological").
func reverseBFS(flow *operator.Flow) []operator.Operator {
	if flow.Root == nil {
		return dedupeOperators(flow.All)
	}
	g := buildGraph(flow)
	order := g.ReverseBFS(flow.Root)
	return appendMissing(order, flow.All)
}

// forwardBFS returns the flow's operators in close order: sources
// first, sinks last (spec.md §4.6's topological close order).
func forwardBFS(flow *operator.Flow) []operator.Operator {
	g := buildGraph(flow)
	var order []operator.Operator
	seen := make(map[operator.Operator]bool)
	for _, src := range flow.Sources {
		for _, op := range g.BFS(src) {
			if !seen[op] {
				seen[op] = true
				order = append(order, op)
			}
		}
	}
	return appendMissingSeen(order, seen, flow.All)
}

func appendMissing(order []operator.Operator, all []operator.Operator) []operator.Operator {
	seen := make(map[operator.Operator]bool, len(order))
	for _, op := range order {
		seen[op] = true
	}
	return appendMissingSeen(order, seen, all)
}

func appendMissingSeen(order []operator.Operator, seen map[operator.Operator]bool, all []operator.Operator) []operator.Operator {
	for _, op := range all {
		if !seen[op] {
			seen[op] = true
			order = append(order, op)
		}
	}
	return order
}

func dedupeOperators(all []operator.Operator) []operator.Operator {
	seen := make(map[operator.Operator]bool, len(all))
	var out []operator.Operator
	for _, op := range all {
		if !seen[op] {
			seen[op] = true
			out = append(out, op)
		}
	}
	return out
}
