package compiler

import (
	"testing"

	"github.com/roach88/nysm/internal/ir"
	"github.com/roach88/nysm/internal/queryir"
	"github.com/roach88/nysm/internal/symtab"
	"github.com/roach88/nysm/internal/types"
)

func TestPropagateSchemasProject(t *testing.T) {
	source := &ir.SourceStreamNode{Stream: "orders"}
	source.SetOutputSchema(ir.Schema{{Name: "price", Type: types.P(types.DOUBLE)}})
	project := &ir.ProjectNode{
		Input: source,
		Columns: []ir.ProjectColumn{
			{Label: "p", Expr: queryir.FieldRef{Source: "orders", Field: "price", Typ: types.P(types.DOUBLE)}},
		},
	}
	spec := &ir.FlowSpec{Root: project}
	if err := PropagateSchemas(spec); err != nil {
		t.Fatalf("PropagateSchemas: %v", err)
	}
	schema := project.OutputSchema()
	if len(schema) != 1 || schema[0].Name != "p" {
		t.Fatalf("schema = %+v", schema)
	}
}

func TestPropagateSchemasAggregateNamesGroupKeys(t *testing.T) {
	source := &ir.SourceStreamNode{Stream: "orders"}
	source.SetOutputSchema(ir.Schema{{Name: "region", Type: types.P(types.STRING)}})
	agg := &ir.AggregateNode{
		Input:     source,
		GroupKeys: []queryir.Expr{queryir.FieldRef{Source: "orders", Field: "region", Typ: types.P(types.STRING)}},
		Aggregates: []ir.AggregateColumn{
			{Label: "total", Function: "COUNT"},
		},
	}
	spec := &ir.FlowSpec{Root: agg}
	if err := PropagateSchemas(spec); err != nil {
		t.Fatalf("PropagateSchemas: %v", err)
	}
	schema := agg.OutputSchema()
	if len(schema) != 2 {
		t.Fatalf("schema = %+v, want 2 fields", schema)
	}
	if schema[0].Name != "key_0" {
		t.Fatalf("schema[0].Name = %q, want key_0", schema[0].Name)
	}
	if schema[1].Name != "total" || !types.Equal(schema[1].Type, types.P(types.BIGINT)) {
		t.Fatalf("schema[1] = %+v, want total/BIGINT", schema[1])
	}
}

func TestPropagateSchemasJoinConcatenatesSides(t *testing.T) {
	left := &ir.SourceStreamNode{Stream: "orders"}
	left.SetOutputSchema(ir.Schema{{Name: "id", Type: types.P(types.INT)}})
	right := &ir.SourceStreamNode{Stream: "customers"}
	right.SetOutputSchema(ir.Schema{{Name: "name", Type: types.P(types.STRING)}})
	join := &ir.JoinNode{Left: left, Right: right}
	spec := &ir.FlowSpec{Root: join}
	if err := PropagateSchemas(spec); err != nil {
		t.Fatalf("PropagateSchemas: %v", err)
	}
	schema := join.OutputSchema()
	if len(schema) != 2 || schema[0].Name != "id" || schema[1].Name != "name" {
		t.Fatalf("schema = %+v", schema)
	}
}

func TestSchemaFromStreamPreservesColumnOrder(t *testing.T) {
	schema := &symtab.StreamSchema{
		Columns: []symtab.Column{
			{Name: "a", Type: types.P(types.INT)},
			{Name: "b", Type: types.P(types.STRING)},
		},
	}
	out := schemaFromStream(schema)
	if len(out) != 2 || out[0].Name != "a" || out[1].Name != "b" {
		t.Fatalf("schemaFromStream = %+v", out)
	}
}
