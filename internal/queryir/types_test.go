package queryir

import (
	"testing"

	"github.com/roach88/nysm/internal/types"
)

func TestConstType(t *testing.T) {
	c := Const{Value: int64(42), Typ: types.P(types.INT)}
	if !types.Equal(c.Type(), types.P(types.INT)) {
		t.Fatalf("expected INT, got %s", c.Type())
	}
}

func TestFieldRefType(t *testing.T) {
	f := FieldRef{Source: "s", Field: "a", Typ: types.P(types.STRING)}
	if f.Type().String() != "STRING" {
		t.Fatalf("unexpected type: %s", f.Type())
	}
}

func TestSealedExprTypeSwitch(t *testing.T) {
	exprs := []Expr{
		Const{Typ: types.P(types.INT)},
		FieldRef{Typ: types.P(types.STRING)},
		Binary{Typ: types.P(types.BOOLEAN)},
		Unary{Typ: types.P(types.BOOLEAN)},
		Call{Typ: types.P(types.DOUBLE)},
	}
	for _, e := range exprs {
		switch e.(type) {
		case Const, FieldRef, Binary, Unary, Call:
		default:
			t.Fatalf("unexpected expr type %T", e)
		}
	}
}
