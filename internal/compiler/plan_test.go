package compiler

import (
	"testing"

	"github.com/roach88/nysm/internal/ast"
	"github.com/roach88/nysm/internal/ir"
	"github.com/roach88/nysm/internal/symtab"
)

func newRootWithOrders(t *testing.T) *symtab.Table {
	t.Helper()
	root := symtab.New(symtab.Builtins())
	create := &ast.CreateStreamStatement{
		Name: "orders",
		Columns: []ast.ColumnDef{
			{Name: "id", Type: "INT"},
			{Name: "price", Type: "DOUBLE"},
			{Name: "region", Type: "STRING"},
		},
	}
	if _, err := CreateExecPlan(create, root); err != nil {
		t.Fatalf("CreateExecPlan(CREATE STREAM): %v", err)
	}
	return root
}

func TestCreateExecPlanCreateStreamDefinesSchema(t *testing.T) {
	root := newRootWithOrders(t)
	schema, ok := root.ResolveStream("orders")
	if !ok {
		t.Fatal("expected orders stream to be defined")
	}
	if len(schema.Columns) != 3 {
		t.Fatalf("Columns = %v, want 3", schema.Columns)
	}
}

func TestCreateExecPlanSelectBuildsFlow(t *testing.T) {
	root := newRootWithOrders(t)
	stmt := &ast.SelectStatement{
		Projection: []*ast.AliasedExpr{
			{Inner: &ast.IdentifierExpr{Name: "price"}},
		},
		From: ast.SourceClause{Stream: "orders"},
		Where: &ast.WhereClause{
			Predicate: &ast.BinaryExpr{
				Op:    ast.OpGt,
				Left:  &ast.IdentifierExpr{Name: "price"},
				Right: &ast.ConstantExpr{Value: float64(0)},
			},
		},
	}
	spec, err := CreateExecPlan(stmt, root)
	if err != nil {
		t.Fatalf("CreateExecPlan(SELECT): %v", err)
	}
	if spec.Root == nil {
		t.Fatal("expected a non-nil flow root")
	}
	if _, ok := spec.Root.(*ir.ConsoleOutputNode); !ok {
		t.Fatalf("Root = %T, want *ir.ConsoleOutputNode", spec.Root)
	}
	schema := spec.Root.OutputSchema()
	if len(schema) != 1 || schema[0].Name != "price" {
		t.Fatalf("schema = %+v", schema)
	}
}

func TestCreateExecPlanSelectIntoNamesMemoryOutput(t *testing.T) {
	root := newRootWithOrders(t)
	stmt := &ast.SelectStatement{
		Projection: []*ast.AliasedExpr{
			{Inner: &ast.IdentifierExpr{Name: "id"}},
		},
		From: ast.SourceClause{Stream: "orders"},
		Into: "hot_orders",
	}
	spec, err := CreateExecPlan(stmt, root)
	if err != nil {
		t.Fatalf("CreateExecPlan(SELECT ... INTO): %v", err)
	}
	out, ok := spec.Root.(*ir.MemoryOutputNode)
	if !ok {
		t.Fatalf("Root = %T, want *ir.MemoryOutputNode", spec.Root)
	}
	if out.Name != "hot_orders" {
		t.Fatalf("Name = %q, want hot_orders", out.Name)
	}
}

func TestCreateExecPlanExplainSetsFlag(t *testing.T) {
	root := newRootWithOrders(t)
	stmt := &ast.ExplainStatement{
		Inner: &ast.SelectStatement{
			Projection: []*ast.AliasedExpr{{Inner: &ast.IdentifierExpr{Name: "id"}}},
			From:       ast.SourceClause{Stream: "orders"},
		},
	}
	spec, err := CreateExecPlan(stmt, root)
	if err != nil {
		t.Fatalf("CreateExecPlan(EXPLAIN): %v", err)
	}
	if !spec.IsExplain {
		t.Fatal("expected IsExplain to be true")
	}
}

func TestCreateExecPlanGroupByBuildsAggregate(t *testing.T) {
	root := newRootWithOrders(t)
	stmt := &ast.SelectStatement{
		Projection: []*ast.AliasedExpr{
			{Inner: &ast.IdentifierExpr{Name: "region"}},
			{Inner: &ast.CallExpr{Function: "COUNT"}, Alias: "n"},
		},
		From:    ast.SourceClause{Stream: "orders"},
		GroupBy: &ast.GroupByClause{Keys: []ast.Expr{&ast.IdentifierExpr{Name: "region"}}},
	}
	spec, err := CreateExecPlan(stmt, root)
	if err != nil {
		t.Fatalf("CreateExecPlan(GROUP BY): %v", err)
	}
	var agg *ir.AggregateNode
	for _, n := range spec.Nodes() {
		if a, ok := n.(*ir.AggregateNode); ok {
			agg = a
		}
	}
	if agg == nil {
		t.Fatal("expected an AggregateNode in the flow")
	}
	if len(agg.Aggregates) != 1 || agg.Aggregates[0].Function != "COUNT" {
		t.Fatalf("Aggregates = %+v", agg.Aggregates)
	}
}

func TestCreateExecPlanDropRemovesStream(t *testing.T) {
	root := newRootWithOrders(t)
	if _, err := CreateExecPlan(&ast.DropStatement{Name: "orders"}, root); err != nil {
		t.Fatalf("CreateExecPlan(DROP): %v", err)
	}
	if _, ok := root.ResolveStream("orders"); ok {
		t.Fatal("expected orders stream to be dropped")
	}
}

func TestCreateExecPlanJoinBuildsBeforeFilter(t *testing.T) {
	root := newRootWithOrders(t)
	create := &ast.CreateStreamStatement{
		Name: "customers",
		Columns: []ast.ColumnDef{
			{Name: "id", Type: "INT"},
			{Name: "name", Type: "STRING"},
		},
	}
	if _, err := CreateExecPlan(create, root); err != nil {
		t.Fatalf("CreateExecPlan(CREATE STREAM customers): %v", err)
	}

	// The WHERE predicate references "name", a field that only exists
	// on the joined-in customers side. It type-checks either way since
	// buildQueryScope registers both sources up front; what this test
	// actually pins down is the node order, since a FilterNode wired
	// directly onto the orders source would never see a customers
	// field at runtime.
	stmt := &ast.SelectStatement{
		Projection: []*ast.AliasedExpr{
			{Inner: &ast.IdentifierExpr{Name: "price"}},
		},
		From: ast.SourceClause{Stream: "orders", Alias: "o"},
		Joins: []ast.JoinClause{
			{
				Source: ast.SourceClause{Stream: "customers", Alias: "c"},
				On: &ast.BinaryExpr{
					Op:    ast.OpEq,
					Left:  &ast.IdentifierExpr{Qualifier: "o", Name: "id"},
					Right: &ast.IdentifierExpr{Qualifier: "c", Name: "id"},
				},
			},
		},
		Where: &ast.WhereClause{
			Predicate: &ast.BinaryExpr{
				Op:    ast.OpNeq,
				Left:  &ast.IdentifierExpr{Qualifier: "c", Name: "name"},
				Right: &ast.ConstantExpr{Value: "acme"},
			},
		},
	}
	spec, err := CreateExecPlan(stmt, root)
	if err != nil {
		t.Fatalf("CreateExecPlan(JOIN ... WHERE): %v", err)
	}
	filter, ok := spec.Root.(*ir.ConsoleOutputNode).Input.(*ir.ProjectNode).Input.(*ir.FilterNode)
	if !ok {
		t.Fatalf("expected FilterNode above the join, got %T", spec.Root)
	}
	if _, ok := filter.Input.(*ir.JoinNode); !ok {
		t.Fatalf("FilterNode.Input = %T, want *ir.JoinNode", filter.Input)
	}
}

func TestCreateExecPlanUndeclaredStreamFails(t *testing.T) {
	root := newRootWithOrders(t)
	stmt := &ast.SelectStatement{
		Projection: []*ast.AliasedExpr{{Inner: &ast.IdentifierExpr{Name: "x"}}},
		From:       ast.SourceClause{Stream: "nope"},
	}
	if _, err := CreateExecPlan(stmt, root); err == nil {
		t.Fatal("expected an error for an undeclared FROM stream")
	}
}
