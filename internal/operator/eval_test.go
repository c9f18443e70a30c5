package operator

import (
	"testing"

	"github.com/roach88/nysm/internal/ast"
	"github.com/roach88/nysm/internal/ir"
	"github.com/roach88/nysm/internal/queryir"
)

func row(fields ...ir.Value) ir.Row {
	names := make([]string, len(fields))
	for i := range fields {
		names[i] = string(rune('a' + i))
	}
	return ir.Row{Fields: names, Values: fields}
}

func TestEvalNotFalse(t *testing.T) {
	e := queryir.Unary{Op: ast.OpNot, Operand: queryir.Const{Value: false}}
	v, err := Eval(e, ir.Row{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b, ok := v.(ir.Bool); !ok || !bool(b) {
		t.Fatalf("expected TRUE, got %#v", v)
	}
}

func TestEvalNotNull(t *testing.T) {
	e := queryir.Unary{Op: ast.OpNot, Operand: queryir.Const{Value: nil}}
	v, err := Eval(e, ir.Row{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := v.(ir.Null); !ok {
		t.Fatalf("expected NULL, got %#v", v)
	}
}

func TestEvalNegateInt(t *testing.T) {
	e := queryir.Unary{Op: ast.OpNeg, Operand: queryir.Const{Value: int64(10)}}
	v, err := Eval(e, ir.Row{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if i, ok := v.(ir.Int); !ok || i != -10 {
		t.Fatalf("expected INT(-10), got %#v", v)
	}
}

func TestEvalIsNull(t *testing.T) {
	e := queryir.Unary{Op: ast.OpIsNull, Operand: queryir.Const{Value: nil}}
	v, err := Eval(e, ir.Row{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b, ok := v.(ir.Bool); !ok || !bool(b) {
		t.Fatalf("expected TRUE, got %#v", v)
	}
}

func TestEvalIsNotNull(t *testing.T) {
	e := queryir.Unary{Op: ast.OpIsNotNull, Operand: queryir.Const{Value: int64(1)}}
	v, err := Eval(e, ir.Row{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b, ok := v.(ir.Bool); !ok || !bool(b) {
		t.Fatalf("expected TRUE, got %#v", v)
	}
}

func TestEvalArithPromotesToDouble(t *testing.T) {
	e := queryir.Binary{
		Op:    ast.OpAdd,
		Left:  queryir.Const{Value: int64(1)},
		Right: queryir.Const{Value: 2.5},
	}
	v, err := Eval(e, ir.Row{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d, ok := v.(ir.Double)
	if !ok || float64(d) != 3.5 {
		t.Fatalf("expected DOUBLE(3.5), got %#v", v)
	}
}

func TestEvalAndShortCircuitsOnFalse(t *testing.T) {
	e := queryir.Binary{
		Op:    ast.OpAnd,
		Left:  queryir.Const{Value: false},
		Right: queryir.Const{Value: nil},
	}
	v, err := Eval(e, ir.Row{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b, ok := v.(ir.Bool); !ok || bool(b) {
		t.Fatalf("expected FALSE, got %#v", v)
	}
}

func TestEvalFieldRefFromRow(t *testing.T) {
	r := row(ir.Int(42))
	e := queryir.FieldRef{Source: "s", Field: "a"}
	v, err := Eval(e, r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if i, ok := v.(ir.Int); !ok || i != 42 {
		t.Fatalf("expected INT(42), got %#v", v)
	}
}

func TestEvalPredicateTreatsNullAsFalse(t *testing.T) {
	ok, err := EvalPredicate(queryir.Const{Value: nil}, ir.Row{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected NULL predicate to evaluate false")
	}
}

func TestEvalCallCoalesce(t *testing.T) {
	e := queryir.Call{
		Function: "COALESCE",
		Args: []queryir.Expr{
			queryir.Const{Value: nil},
			queryir.Const{Value: "fallback"},
		},
	}
	v, err := Eval(e, ir.Row{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s, ok := v.(ir.Str); !ok || string(s) != "fallback" {
		t.Fatalf("expected STRING(fallback), got %#v", v)
	}
}
