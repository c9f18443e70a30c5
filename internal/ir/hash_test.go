package ir

import "testing"

func TestPlanNodeHashStable(t *testing.T) {
	params := Obj{"stream": Str("orders")}
	h1, err := PlanNodeHash("source_stream", params)
	if err != nil {
		t.Fatalf("PlanNodeHash: %v", err)
	}
	h2, err := PlanNodeHash("source_stream", params)
	if err != nil {
		t.Fatalf("PlanNodeHash: %v", err)
	}
	if h1 != h2 {
		t.Fatalf("expected stable hash, got %s vs %s", h1, h2)
	}
	if len(h1) != 16 {
		t.Fatalf("expected 16-char hash, got %q", h1)
	}
}

func TestPlanNodeHashDiffersByKind(t *testing.T) {
	params := Obj{"stream": Str("orders")}
	h1, _ := PlanNodeHash("source_stream", params)
	h2, _ := PlanNodeHash("filter", params)
	if h1 == h2 {
		t.Fatal("expected different kinds to hash differently")
	}
}
