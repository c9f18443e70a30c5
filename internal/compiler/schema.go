package compiler

import (
	"github.com/roach88/nysm/internal/ir"
	"github.com/roach88/nysm/internal/symtab"
	"github.com/roach88/nysm/internal/types"
)

// aggregateResultType names the output type of one aggregate column.
// COUNT is always a non-nullable BIGINT; SUM/AVG widen to a nullable
// DOUBLE (null on an empty group); MIN/MAX keep the argument's type,
// made nullable since an empty group produces no value.
func aggregateResultType(agg ir.AggregateColumn) types.Type {
	switch agg.Function {
	case "COUNT":
		return types.P(types.BIGINT)
	case "SUM", "AVG":
		return types.MakeNullable(types.P(types.DOUBLE))
	case "MIN", "MAX":
		if agg.Arg == nil {
			return types.MakeNullable(types.P(types.DOUBLE))
		}
		return types.MakeNullable(agg.Arg.Type())
	default:
		return types.MakeNullable(types.P(types.DOUBLE))
	}
}

func schemaFromStream(schema *symtab.StreamSchema) ir.Schema {
	out := make(ir.Schema, len(schema.Columns))
	for i, c := range schema.Columns {
		out[i] = ir.Field{Name: c.Name, Type: c.Type}
	}
	return out
}

// PropagateSchemas walks spec top-down (source-first, via FlowSpec.Nodes)
// and computes every node's output schema from its inputs and
// parameters. SourceStreamNode schemas are expected to already be set by
// the plan builder (they come from the declared stream, not from an
// input); every other node derives its schema purely from its already-
// elaborated queryir.Expr parameters, so this pass is idempotent and can
// safely re-run against an already-built spec.
func PropagateSchemas(spec *ir.FlowSpec) error {
	for _, node := range spec.Nodes() {
		switch n := node.(type) {
		case *ir.SourceStreamNode:
			// already set at construction time.
		case *ir.ProjectNode:
			schema := make(ir.Schema, len(n.Columns))
			for i, col := range n.Columns {
				schema[i] = ir.Field{Name: col.Label, Type: col.Expr.Type()}
			}
			n.SetOutputSchema(schema)
		case *ir.FilterNode:
			n.SetOutputSchema(n.Input.OutputSchema())
		case *ir.AggregateNode:
			schema := make(ir.Schema, 0, len(n.GroupKeys)+len(n.Aggregates))
			for i, k := range n.GroupKeys {
				schema = append(schema, ir.Field{Name: groupKeyFieldName(i), Type: k.Type()})
			}
			for _, agg := range n.Aggregates {
				schema = append(schema, ir.Field{Name: agg.Label, Type: aggregateResultType(agg)})
			}
			n.SetOutputSchema(schema)
		case *ir.JoinNode:
			left := n.Left.OutputSchema()
			right := n.Right.OutputSchema()
			schema := make(ir.Schema, 0, len(left)+len(right))
			schema = append(schema, left...)
			schema = append(schema, right...)
			n.SetOutputSchema(schema)
		case *ir.ConsoleOutputNode:
			n.SetOutputSchema(n.Input.OutputSchema())
		case *ir.MemoryOutputNode:
			n.SetOutputSchema(n.Input.OutputSchema())
		default:
			return &PlanError{Node: node.Kind(), Message: "unhandled plan node kind in schema propagation"}
		}
	}
	return nil
}

// groupKeyFieldName mirrors operator.Aggregate's CompleteWindow field
// naming for group-key output columns ("key_0", "key_1", ...).
func groupKeyFieldName(i int) string {
	return "key_" + itoa(i)
}
