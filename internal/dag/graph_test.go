package dag

import "testing"

func buildChain() *Graph[string] {
	g := New[string]()
	g.AddEdge("source", "filter")
	g.AddEdge("filter", "sink")
	return g
}

func TestBFSOrder(t *testing.T) {
	g := buildChain()
	got := g.BFS("source")
	want := []string{"source", "filter", "sink"}
	assertSeq(t, got, want)
}

func TestReverseBFSOrder(t *testing.T) {
	g := buildChain()
	got := g.ReverseBFS("sink")
	want := []string{"sink", "filter", "source"}
	assertSeq(t, got, want)
}

func TestDFSVisitsEachNodeOnce(t *testing.T) {
	g := New[string]()
	g.AddEdge("a", "b")
	g.AddEdge("a", "c")
	g.AddEdge("b", "d")
	g.AddEdge("c", "d")
	got := g.DFS("a")
	if len(got) != 4 {
		t.Fatalf("expected 4 unique nodes, got %v", got)
	}
}

func TestNodesIncludesIsolated(t *testing.T) {
	g := New[int]()
	g.AddNode(1)
	g.AddEdge(2, 3)
	if len(g.Nodes()) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(g.Nodes()))
	}
}

func assertSeq(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
