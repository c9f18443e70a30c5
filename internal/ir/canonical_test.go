package ir

import "testing"

func TestMarshalCanonicalObjectKeyOrder(t *testing.T) {
	obj := Obj{"zeta": Str("z"), "alpha": Int(1)}
	b, err := MarshalCanonical(obj)
	if err != nil {
		t.Fatalf("MarshalCanonical: %v", err)
	}
	if string(b) != `{"alpha":1,"zeta":"z"}` {
		t.Fatalf("unexpected canonical encoding: %s", b)
	}
}

func TestMarshalCanonicalDeterministic(t *testing.T) {
	obj := Obj{"a": Int(1), "b": Bool(true)}
	b1, err := MarshalCanonical(obj)
	if err != nil {
		t.Fatalf("MarshalCanonical: %v", err)
	}
	b2, err := MarshalCanonical(obj)
	if err != nil {
		t.Fatalf("MarshalCanonical: %v", err)
	}
	if string(b1) != string(b2) {
		t.Fatalf("expected deterministic output, got %s vs %s", b1, b2)
	}
}

func TestMarshalCanonicalStringNoHTMLEscape(t *testing.T) {
	b, err := MarshalCanonical(Str("<a & b>"))
	if err != nil {
		t.Fatalf("MarshalCanonical: %v", err)
	}
	if string(b) != `"<a & b>"` {
		t.Fatalf("expected unescaped HTML chars, got %s", b)
	}
}
