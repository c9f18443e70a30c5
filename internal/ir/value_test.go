package ir

import "testing"

func TestObjSortedKeysRFC8785(t *testing.T) {
	o := Obj{"b": Int(1), "a": Int(2), "Z": Int(3)}
	keys := o.SortedKeys()
	if len(keys) != 3 {
		t.Fatalf("expected 3 keys, got %d", len(keys))
	}
	// "Z" (0x5A) sorts before "a" (0x61) and "b" (0x62) in UTF-16 order.
	if keys[0] != "Z" || keys[1] != "a" || keys[2] != "b" {
		t.Fatalf("unexpected key order: %v", keys)
	}
}

func TestMarshalValueKinds(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{Null{}, "null"},
		{Bool(true), "true"},
		{Int(42), "42"},
		{Str("hi"), `"hi"`},
	}
	for _, c := range cases {
		b, err := MarshalValue(c.v)
		if err != nil {
			t.Fatalf("MarshalValue(%v): %v", c.v, err)
		}
		if string(b) != c.want {
			t.Errorf("MarshalValue(%v) = %s, want %s", c.v, b, c.want)
		}
	}
}

func TestObjMarshalJSONDeterministicOrder(t *testing.T) {
	o := Obj{"b": Int(1), "a": Int(2)}
	b, err := o.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	if string(b) != `{"a":2,"b":1}` {
		t.Fatalf("unexpected encoding: %s", b)
	}
}

func TestRowToObj(t *testing.T) {
	r := Row{Fields: []string{"a", "b"}, Values: []Value{Int(1), Str("x")}}
	o := RowToObj(r)
	if o["a"] != Value(Int(1)) {
		t.Fatalf("unexpected value for a: %v", o["a"])
	}
}

func TestRowGet(t *testing.T) {
	r := Row{Fields: []string{"a", "b"}, Values: []Value{Int(1), Str("x")}}
	v, ok := r.Get("b")
	if !ok || v != Value(Str("x")) {
		t.Fatalf("unexpected Get result: %v, %v", v, ok)
	}
	if _, ok := r.Get("missing"); ok {
		t.Fatal("expected missing field to not be found")
	}
}
