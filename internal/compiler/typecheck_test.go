package compiler

import (
	"testing"

	"github.com/roach88/nysm/internal/ast"
	"github.com/roach88/nysm/internal/symtab"
	"github.com/roach88/nysm/internal/types"
)

func ordersScope(t *testing.T) (*queryScope, *symtab.Table) {
	t.Helper()
	root := symtab.New(symtab.Builtins())
	schema := &symtab.StreamSchema{
		Name: "orders",
		Columns: []symtab.Column{
			{Name: "price", Type: types.P(types.DOUBLE)},
			{Name: "qty", Type: types.P(types.INT)},
			{Name: "name", Type: types.P(types.STRING)},
		},
	}
	if err := root.DefineStream(schema); err != nil {
		t.Fatalf("DefineStream: %v", err)
	}
	qs := newQueryScope()
	qs.addSource("orders", schema)
	return qs, root
}

func TestTypeCheckerConstant(t *testing.T) {
	qs, root := ordersScope(t)
	e, err := TypeChecker(&ast.ConstantExpr{Value: int64(3)}, qs, root)
	if err != nil {
		t.Fatalf("TypeChecker: %v", err)
	}
	if !types.Equal(e.Type(), types.P(types.INT)) {
		t.Fatalf("Type() = %v, want INT", e.Type())
	}
}

func TestTypeCheckerIdentifierResolvesField(t *testing.T) {
	qs, root := ordersScope(t)
	e, err := TypeChecker(&ast.IdentifierExpr{Name: "price"}, qs, root)
	if err != nil {
		t.Fatalf("TypeChecker: %v", err)
	}
	if !types.Equal(e.Type(), types.P(types.DOUBLE)) {
		t.Fatalf("Type() = %v, want DOUBLE", e.Type())
	}
}

func TestTypeCheckerUnknownIdentifierFails(t *testing.T) {
	qs, root := ordersScope(t)
	if _, err := TypeChecker(&ast.IdentifierExpr{Name: "nope"}, qs, root); err == nil {
		t.Fatal("expected error for unknown field")
	} else if !IsTypeError(err) {
		t.Fatalf("expected *TypeError, got %T", err)
	}
}

func TestTypeCheckerArithmeticWidensToBiggerType(t *testing.T) {
	qs, root := ordersScope(t)
	e, err := TypeChecker(&ast.BinaryExpr{
		Op:    ast.OpMul,
		Left:  &ast.IdentifierExpr{Name: "price"},
		Right: &ast.IdentifierExpr{Name: "qty"},
	}, qs, root)
	if err != nil {
		t.Fatalf("TypeChecker: %v", err)
	}
	if !types.Equal(e.Type(), types.P(types.DOUBLE)) {
		t.Fatalf("Type() = %v, want DOUBLE", e.Type())
	}
}

func TestTypeCheckerComparisonIsAlwaysBoolean(t *testing.T) {
	qs, root := ordersScope(t)
	e, err := TypeChecker(&ast.BinaryExpr{
		Op:    ast.OpGt,
		Left:  &ast.IdentifierExpr{Name: "qty"},
		Right: &ast.ConstantExpr{Value: int64(0)},
	}, qs, root)
	if err != nil {
		t.Fatalf("TypeChecker: %v", err)
	}
	if !types.Equal(e.Type(), types.P(types.BOOLEAN)) {
		t.Fatalf("Type() = %v, want BOOLEAN", e.Type())
	}
}

func TestTypeCheckerCallResolvesUniversal(t *testing.T) {
	qs, root := ordersScope(t)
	e, err := TypeChecker(&ast.CallExpr{
		Function: "ABS",
		Args:     []ast.Expr{&ast.IdentifierExpr{Name: "qty"}},
	}, qs, root)
	if err != nil {
		t.Fatalf("TypeChecker: %v", err)
	}
	if !types.Equal(e.Type(), types.P(types.INT)) {
		t.Fatalf("Type() = %v, want INT", e.Type())
	}
}

func TestTypeCheckerCallWrongArityFails(t *testing.T) {
	qs, root := ordersScope(t)
	_, err := TypeChecker(&ast.CallExpr{
		Function: "ABS",
		Args:     []ast.Expr{&ast.IdentifierExpr{Name: "qty"}, &ast.IdentifierExpr{Name: "price"}},
	}, qs, root)
	if err == nil {
		t.Fatal("expected arity error")
	}
}

func TestTypeCheckerCoalesceVariadicSharesAlias(t *testing.T) {
	qs, root := ordersScope(t)
	e, err := TypeChecker(&ast.CallExpr{
		Function: "COALESCE",
		Args: []ast.Expr{
			&ast.IdentifierExpr{Name: "price"},
			&ast.ConstantExpr{Value: float64(0)},
		},
	}, qs, root)
	if err != nil {
		t.Fatalf("TypeChecker: %v", err)
	}
	if !types.Equal(e.Type(), types.P(types.DOUBLE)) {
		t.Fatalf("Type() = %v, want DOUBLE", e.Type())
	}
}
