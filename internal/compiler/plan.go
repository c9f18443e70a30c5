package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/nysm/internal/ast"
	"github.com/roach88/nysm/internal/ir"
	"github.com/roach88/nysm/internal/queryir"
	"github.com/roach88/nysm/internal/symtab"
	"github.com/roach88/nysm/internal/types"
)

var aggregateFuncs = map[string]bool{
	"COUNT": true, "SUM": true, "AVG": true, "MIN": true, "MAX": true,
}

// CreateExecPlan dispatches per statement variant (spec.md §4.3). SELECT
// produces a source(s) -> join? -> filter? -> (aggregate | project) ->
// sink chain: a GROUP BY query gets an aggregate node in place of the
// project node. EXPLAIN runs the same pipeline and flags the result.
// DDL statements mutate root and return an empty flow spec.
func CreateExecPlan(stmt ast.Statement, root *symtab.Table) (*ir.FlowSpec, error) {
	switch s := stmt.(type) {
	case *ast.SelectStatement:
		return planSelect(s, root)
	case *ast.CreateStreamStatement:
		return planCreateStream(s, root)
	case *ast.DropStatement:
		return planDrop(s, root)
	case *ast.ExplainStatement:
		spec, err := CreateExecPlan(s.Inner, root)
		if err != nil {
			return nil, err
		}
		spec.IsExplain = true
		return spec, nil
	case *ast.DescribeStatement:
		return &ir.FlowSpec{Statement: "DESCRIBE " + s.Name}, nil
	case *ast.ShowStatement:
		return &ir.FlowSpec{Statement: "SHOW"}, nil
	default:
		return nil, &PlanError{Node: "statement", Message: "unsupported statement type"}
	}
}

func planCreateStream(s *ast.CreateStreamStatement, root *symtab.Table) (*ir.FlowSpec, error) {
	cols := make([]symtab.Column, len(s.Columns))
	for i, c := range s.Columns {
		t, ok := primitiveFromName(c.Type)
		if !ok {
			return nil, &PlanError{Node: c.Name, Message: "unrecognized column type " + c.Type}
		}
		cols[i] = symtab.Column{Name: c.Name, Type: t}
	}
	schema := &symtab.StreamSchema{Name: s.Name, Columns: cols}
	if err := root.DefineStream(schema); err != nil {
		return nil, &PlanError{Node: s.Name, Message: err.Error()}
	}
	return &ir.FlowSpec{Statement: "CREATE STREAM " + s.Name}, nil
}

func planDrop(s *ast.DropStatement, root *symtab.Table) (*ir.FlowSpec, error) {
	if !root.DropStream(s.Name) {
		return nil, &PlanError{Node: s.Name, Message: "no such stream"}
	}
	return &ir.FlowSpec{Statement: "DROP " + s.Name}, nil
}

func planSelect(s *ast.SelectStatement, root *symtab.Table) (*ir.FlowSpec, error) {
	if err := AssignFieldLabels(s); err != nil {
		return nil, err
	}

	qs, err := buildQueryScope(root, s)
	if err != nil {
		return nil, err
	}

	multiSource := len(s.Joins) > 0

	leftAlias := s.From.Alias
	if leftAlias == "" {
		leftAlias = s.From.Stream
	}
	leftSchema, _ := root.ResolveStream(s.From.Stream)

	source := &ir.SourceStreamNode{Stream: s.From.Stream}
	source.SetOutputSchema(schemaFromStream(leftSchema))
	var current ir.PlanNode = source

	// Joins are built before the WHERE filter even though spec.md §4.3
	// lists "optional filter" ahead of "optional join": buildQueryScope
	// already registers every FROM/JOIN alias into one flat queryScope
	// up front, so a WHERE predicate referencing a joined-in field (e.g.
	// "c.name" after "JOIN customers c") type-checks regardless of which
	// IR node gets built first. What the construction order actually
	// has to respect is runtime data availability in the node chain
	// itself: a FilterNode wired as the source's direct child would run
	// once per pre-join row, before a joined-in field exists at all.
	// Building the join first makes "current" the joined row stream, so
	// FilterNode sits above it and its predicate can reference either
	// side.
	for _, join := range s.Joins {
		if join.Type != ast.JoinInner {
			return nil, &TypeError{Node: "JOIN " + join.Source.Stream, Message: "only inner joins are supported", Pos: join.On.Pos()}
		}
		rightSchema, ok := root.ResolveStream(join.Source.Stream)
		if !ok {
			return nil, &PlanError{Node: join.Source.Stream, Message: "undeclared stream"}
		}
		rightAlias := join.Source.Alias
		if rightAlias == "" {
			rightAlias = join.Source.Stream
		}
		rightNode := &ir.SourceStreamNode{Stream: join.Source.Stream}
		rightNode.SetOutputSchema(schemaFromStream(rightSchema))

		onExpr, err := TypeChecker(join.On, qs, root)
		if err != nil {
			return nil, err
		}
		key, err := JoinKeyVisitor(onExpr, join.On.Pos(), leftAlias, rightAlias, leftSchema, rightSchema)
		if err != nil {
			return nil, err
		}
		current = &ir.JoinNode{Left: current, Right: rightNode, Key: key}
	}

	if s.Where != nil {
		rewritten, err := JoinNameVisitor(s.Where.Predicate, qs, multiSource)
		if err != nil {
			return nil, err
		}
		s.Where.Predicate = rewritten
		predExpr, err := TypeChecker(s.Where.Predicate, qs, root)
		if err != nil {
			return nil, err
		}
		current = &ir.FilterNode{Input: current, Predicate: predExpr}
	}

	if s.GroupBy != nil {
		aggNode, err := buildAggregate(s, qs, root, current, multiSource)
		if err != nil {
			return nil, err
		}
		current = aggNode
	} else {
		projNode, err := buildProject(s.Projection, qs, root, current, multiSource)
		if err != nil {
			return nil, err
		}
		current = projNode
	}

	var sink ir.PlanNode
	if s.Into != "" {
		sink = &ir.MemoryOutputNode{Input: current, Name: s.Into}
	} else {
		sink = &ir.ConsoleOutputNode{Input: current}
	}

	spec := &ir.FlowSpec{Statement: renderStatement(s), Root: sink}
	if err := PropagateSchemas(spec); err != nil {
		return nil, err
	}
	return spec, nil
}

func buildProject(projection []*ast.AliasedExpr, qs *queryScope, root *symtab.Table, input ir.PlanNode, multiSource bool) (*ir.ProjectNode, error) {
	columns := make([]ir.ProjectColumn, len(projection))
	for i, p := range projection {
		rewritten, err := JoinNameVisitor(p.Inner, qs, multiSource)
		if err != nil {
			return nil, err
		}
		p.Inner = rewritten
		elaborated, err := TypeChecker(p.Inner, qs, root)
		if err != nil {
			return nil, err
		}
		columns[i] = ir.ProjectColumn{Label: p.Label, Expr: elaborated}
	}
	return &ir.ProjectNode{Input: input, Columns: columns}, nil
}

// buildAggregate elaborates GROUP BY keys and scans the projection for
// aggregate-function calls (COUNT/SUM/AVG/MIN/MAX), building the
// AggregateNode the projection's non-aggregate entries are expected to
// reference positionally as group keys.
func buildAggregate(s *ast.SelectStatement, qs *queryScope, root *symtab.Table, input ir.PlanNode, multiSource bool) (*ir.AggregateNode, error) {
	keys := make([]queryir.Expr, len(s.GroupBy.Keys))
	for i, k := range s.GroupBy.Keys {
		rewritten, err := JoinNameVisitor(k, qs, multiSource)
		if err != nil {
			return nil, err
		}
		s.GroupBy.Keys[i] = rewritten
		elaborated, err := TypeChecker(s.GroupBy.Keys[i], qs, root)
		if err != nil {
			return nil, err
		}
		keys[i] = elaborated
	}

	var aggregates []ir.AggregateColumn
	for _, p := range s.Projection {
		call, ok := p.Inner.(*ast.CallExpr)
		if !ok || !aggregateFuncs[strings.ToUpper(call.Function)] {
			continue
		}
		var arg queryir.Expr
		if len(call.Args) == 1 {
			rewritten, err := JoinNameVisitor(call.Args[0], qs, multiSource)
			if err != nil {
				return nil, err
			}
			call.Args[0] = rewritten
			elaborated, err := TypeChecker(call.Args[0], qs, root)
			if err != nil {
				return nil, err
			}
			arg = elaborated
		}
		aggregates = append(aggregates, ir.AggregateColumn{
			Label:    p.Label,
			Function: strings.ToUpper(call.Function),
			Arg:      arg,
		})
	}

	return &ir.AggregateNode{Input: input, GroupKeys: keys, Aggregates: aggregates}, nil
}

var primitiveKinds = map[string]types.Kind{
	"BOOLEAN":   types.BOOLEAN,
	"INT":       types.INT,
	"BIGINT":    types.BIGINT,
	"FLOAT":     types.FLOAT,
	"DOUBLE":    types.DOUBLE,
	"STRING":    types.STRING,
	"TIMESTAMP": types.TIMESTAMP,
	"TIMESPAN":  types.TIMESPAN,
}

// primitiveFromName resolves a CREATE STREAM column's written type name
// to its internal/types representation. A "NULLABLE " prefix wraps the
// named primitive, e.g. "NULLABLE STRING".
func primitiveFromName(name string) (types.Type, bool) {
	nullable := false
	if rest, ok := strings.CutPrefix(name, "NULLABLE "); ok {
		nullable = true
		name = rest
	}
	kind, ok := primitiveKinds[strings.ToUpper(name)]
	if !ok {
		return nil, false
	}
	t := types.Type(types.P(kind))
	if nullable {
		t = types.MakeNullable(t)
	}
	return t, true
}

// renderStatement reconstructs a canonical SQL rendering of a SELECT
// statement for EXPLAIN output and flow-spec logging. It reflects the
// already-labeled, possibly join-rewritten projection and predicate
// trees rather than the user's original source text.
func renderStatement(s *ast.SelectStatement) string {
	var b strings.Builder
	b.WriteString("SELECT ")
	for i, p := range s.Projection {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(renderExpr(p.Inner))
		if p.Label != "" {
			b.WriteString(" AS ")
			b.WriteString(p.Label)
		}
	}
	b.WriteString(" FROM ")
	b.WriteString(renderSource(s.From))
	for _, j := range s.Joins {
		b.WriteString(" JOIN ")
		b.WriteString(renderSource(j.Source))
		b.WriteString(" ON ")
		b.WriteString(renderExpr(j.On))
	}
	if s.Where != nil {
		b.WriteString(" WHERE ")
		b.WriteString(renderExpr(s.Where.Predicate))
	}
	if s.GroupBy != nil {
		b.WriteString(" GROUP BY ")
		for i, k := range s.GroupBy.Keys {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(renderExpr(k))
		}
	}
	if s.Into != "" {
		b.WriteString(" INTO ")
		b.WriteString(s.Into)
	}
	return b.String()
}

func renderSource(src ast.SourceClause) string {
	if src.Alias == "" {
		return src.Stream
	}
	return src.Stream + " AS " + src.Alias
}

func renderExpr(e ast.Expr) string {
	switch v := e.(type) {
	case *ast.ConstantExpr:
		if s, ok := v.Value.(string); ok {
			return "'" + s + "'"
		}
		return fmt.Sprint(v.Value)
	case *ast.IdentifierExpr:
		if v.Qualifier == "" {
			return v.Name
		}
		return v.Qualifier + "." + v.Name
	case *ast.FieldRefExpr:
		return v.Source + "." + v.Field
	case *ast.BinaryExpr:
		return renderExpr(v.Left) + " " + v.Op.String() + " " + renderExpr(v.Right)
	case *ast.UnaryExpr:
		if v.Op == ast.OpIsNull || v.Op == ast.OpIsNotNull {
			return renderExpr(v.Operand) + " " + v.Op.String()
		}
		return v.Op.String() + renderExpr(v.Operand)
	case *ast.CallExpr:
		args := make([]string, len(v.Args))
		for i, a := range v.Args {
			args[i] = renderExpr(a)
		}
		return v.Function + "(" + strings.Join(args, ", ") + ")"
	case *ast.AliasedExpr:
		return renderExpr(v.Inner)
	default:
		return "?"
	}
}
