package queryir

import "testing"

func TestExtractJoinKeySingle(t *testing.T) {
	left := map[string]bool{"cart_id": true}
	right := map[string]bool{"order_id": true}
	pred := FieldEqual{LeftField: "cart_id", RightField: "order_id"}
	jk, err := ExtractJoinKey(pred, "carts", "orders", left, right)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jk.Pairs) != 1 || jk.Pairs[0] != pred {
		t.Fatalf("unexpected key: %+v", jk)
	}
}

func TestExtractJoinKeyReorients(t *testing.T) {
	left := map[string]bool{"cart_id": true}
	right := map[string]bool{"order_id": true}
	// ON-clause written right = left
	pred := FieldEqual{LeftField: "order_id", RightField: "cart_id"}
	jk, err := ExtractJoinKey(pred, "carts", "orders", left, right)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := FieldEqual{LeftField: "cart_id", RightField: "order_id"}
	if jk.Pairs[0] != want {
		t.Fatalf("expected reoriented pair %+v, got %+v", want, jk.Pairs[0])
	}
}

func TestExtractJoinKeyRejectsLiteralCompare(t *testing.T) {
	_, err := ExtractJoinKey(Equal{Field: "status"}, "l", "r", nil, nil)
	if err == nil {
		t.Fatal("expected error for literal-compare join predicate")
	}
}

func TestExtractJoinKeyRejectsNil(t *testing.T) {
	if _, err := ExtractJoinKey(nil, "l", "r", nil, nil); err == nil {
		t.Fatal("expected error for missing ON-clause")
	}
}

func TestExtractJoinKeyAnd(t *testing.T) {
	left := map[string]bool{"a": true, "b": true}
	right := map[string]bool{"x": true, "y": true}
	pred := And{Predicates: []Predicate{
		FieldEqual{LeftField: "a", RightField: "x"},
		FieldEqual{LeftField: "b", RightField: "y"},
	}}
	jk, err := ExtractJoinKey(pred, "l", "r", left, right)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jk.Pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(jk.Pairs))
	}
}
