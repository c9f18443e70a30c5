package operator

import (
	"testing"

	"github.com/roach88/nysm/internal/ir"
	"github.com/roach88/nysm/internal/queryir"
)

func TestAggregateCountAndSum(t *testing.T) {
	cap := &captureContext{}
	agg := NewAggregate(
		nil,
		[]ir.AggregateColumn{
			{Label: "n", Function: "COUNT", Arg: nil},
			{Label: "total", Function: "SUM", Arg: queryir.FieldRef{Field: "amount"}},
		},
		cap,
	)

	rows := []ir.Row{
		{Fields: []string{"amount"}, Values: []ir.Value{ir.Int(10)}},
		{Fields: []string{"amount"}, Values: []ir.Value{ir.Int(5)}},
	}
	for _, r := range rows {
		if err := agg.TakeEvent(r); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if err := agg.CompleteWindow(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cap.rows) != 1 {
		t.Fatalf("expected one result row, got %d", len(cap.rows))
	}
	result := cap.rows[0]
	n, _ := result.Get("n")
	total, _ := result.Get("total")
	if bi, ok := n.(ir.BigInt); !ok || bi != 2 {
		t.Fatalf("expected COUNT=2, got %#v", n)
	}
	if d, ok := total.(ir.Double); !ok || d != 15 {
		t.Fatalf("expected SUM=15, got %#v", total)
	}
}

func TestAggregateGroupsByKey(t *testing.T) {
	cap := &captureContext{}
	agg := NewAggregate(
		[]queryir.Expr{queryir.FieldRef{Field: "category"}},
		[]ir.AggregateColumn{{Label: "n", Function: "COUNT", Arg: nil}},
		cap,
	)
	rows := []ir.Row{
		{Fields: []string{"category"}, Values: []ir.Value{ir.Str("a")}},
		{Fields: []string{"category"}, Values: []ir.Value{ir.Str("b")}},
		{Fields: []string{"category"}, Values: []ir.Value{ir.Str("a")}},
	}
	for _, r := range rows {
		if err := agg.TakeEvent(r); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if err := agg.CompleteWindow(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cap.rows) != 2 {
		t.Fatalf("expected two groups, got %d", len(cap.rows))
	}
}
