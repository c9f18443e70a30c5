package engine

import (
	"log/slog"
	"testing"
	"time"

	"github.com/roach88/nysm/internal/ir"
	"github.com/roach88/nysm/internal/store"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	mem, err := store.Open()
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { mem.Close() })

	logger := slog.New(slog.NewTextHandler(testWriter{t}, nil))
	e := New(NewFixedGenerator("flow-1", "flow-2", "flow-3"), NewInProcessIngestion(), mem, logger)
	go e.Run()
	t.Cleanup(e.Shutdown)
	return e
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func mustSubmit(t *testing.T, e *Engine, query string) SubmitResult {
	t.Helper()
	res, err := e.Submit(query, nil)
	if err != nil {
		t.Fatalf("Submit(%q): %v", query, err)
	}
	return res
}

func TestSubmitCreateStreamThenSelectDeploysFlow(t *testing.T) {
	e := newTestEngine(t)
	mustSubmit(t, e, "CREATE STREAM orders (id INT, price DOUBLE)")

	res := mustSubmit(t, e, "SELECT id, price FROM orders")
	if res.FlowID == "" {
		t.Fatal("expected a flow id for a deployed SELECT")
	}

	flows := e.ListFlows()
	info, ok := flows[res.FlowID]
	if !ok {
		t.Fatalf("flow %s missing from ListFlows: %v", res.FlowID, flows)
	}
	if info.State != FlowRunning {
		t.Fatalf("State = %s, want RUNNING", info.State)
	}
}

func TestEndToEndRowFlowsToWatchingSession(t *testing.T) {
	e := newTestEngine(t)
	mustSubmit(t, e, "CREATE STREAM orders (id INT, price DOUBLE)")
	res := mustSubmit(t, e, "SELECT id, price FROM orders WHERE price > 10")

	sid := e.Connect()
	if err := e.WatchFlow(sid, res.FlowID); err != nil {
		t.Fatalf("WatchFlow: %v", err)
	}
	console := e.Console(sid)
	if console == nil {
		t.Fatal("Console returned nil for a connected session")
	}

	if err := e.Ingest("orders", ir.Row{
		Fields: []string{"id", "price"},
		Values: []ir.Value{ir.Int(1), ir.Double(42.5)},
	}); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	select {
	case ev := <-console:
		price, ok := ev.Row.Get("price")
		if !ok || price != ir.Double(42.5) {
			t.Fatalf("unexpected row: %+v", ev.Row)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for console event")
	}

	if err := e.Ingest("orders", ir.Row{
		Fields: []string{"id", "price"},
		Values: []ir.Value{ir.Int(2), ir.Double(1.0)},
	}); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	select {
	case ev := <-console:
		t.Fatalf("filtered row should not reach the console: %+v", ev.Row)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestCancelFlowRemovesItFromListFlows(t *testing.T) {
	e := newTestEngine(t)
	mustSubmit(t, e, "CREATE STREAM orders (id INT, price DOUBLE)")
	res := mustSubmit(t, e, "SELECT id FROM orders")

	e.CancelFlow(res.FlowID)
	if !e.Join(res.FlowID, 2*time.Second) {
		t.Fatal("Join timed out waiting for cancellation")
	}
	if _, ok := e.ListFlows()[res.FlowID]; ok {
		t.Fatal("expected flow to be gone after cancel")
	}
}

func TestCancelUnknownFlowIsNoop(t *testing.T) {
	e := newTestEngine(t)
	e.CancelFlow("does-not-exist")
	if !e.Join("does-not-exist", time.Second) {
		t.Fatal("Join of an unknown flow should report true immediately")
	}
}

func TestWatchUnknownFlowReturnsControlError(t *testing.T) {
	e := newTestEngine(t)
	sid := e.Connect()
	err := e.WatchFlow(sid, "does-not-exist")
	if !IsControlError(err) {
		t.Fatalf("WatchFlow(unknown) = %v, want a ControlError", err)
	}
}

func TestGetWatchListReflectsSubscriptions(t *testing.T) {
	e := newTestEngine(t)
	mustSubmit(t, e, "CREATE STREAM orders (id INT, price DOUBLE)")
	res := mustSubmit(t, e, "SELECT id FROM orders")

	sid := e.Connect()
	if err := e.WatchFlow(sid, res.FlowID); err != nil {
		t.Fatalf("WatchFlow: %v", err)
	}
	list := e.GetWatchList(sid)
	if len(list) != 1 || list[0] != res.FlowID {
		t.Fatalf("GetWatchList = %v, want [%s]", list, res.FlowID)
	}
	if err := e.UnwatchFlow(sid, res.FlowID); err != nil {
		t.Fatalf("UnwatchFlow: %v", err)
	}
	if list := e.GetWatchList(sid); len(list) != 0 {
		t.Fatalf("GetWatchList after unwatch = %v, want empty", list)
	}
}

func TestExplainRendersParseTreeAndExecutionPlan(t *testing.T) {
	e := newTestEngine(t)
	mustSubmit(t, e, "CREATE STREAM orders (id INT, price DOUBLE)")
	res := mustSubmit(t, e, "EXPLAIN SELECT id FROM orders")
	if len(res.Messages) != 1 {
		t.Fatalf("Messages = %v, want exactly one", res.Messages)
	}
	text := res.Messages[0]
	if !contains(text, "Parse tree:") || !contains(text, "Execution plan:") {
		t.Fatalf("EXPLAIN output missing section markers: %s", text)
	}
}

func TestShowStreamsAndDescribe(t *testing.T) {
	e := newTestEngine(t)
	mustSubmit(t, e, "CREATE STREAM orders (id INT, price DOUBLE)")

	res := mustSubmit(t, e, "SHOW STREAMS")
	if len(res.Messages) != 1 || res.Messages[0] != "orders" {
		t.Fatalf("SHOW STREAMS = %v, want [orders]", res.Messages)
	}

	res = mustSubmit(t, e, "DESCRIBE orders")
	if len(res.Messages) != 3 {
		t.Fatalf("DESCRIBE orders = %v, want a header plus two columns", res.Messages)
	}
}

func TestDropRemovesStreamAndReturnsMessage(t *testing.T) {
	e := newTestEngine(t)
	mustSubmit(t, e, "CREATE STREAM orders (id INT, price DOUBLE)")
	res := mustSubmit(t, e, "DROP orders")
	if len(res.Messages) == 0 {
		t.Fatal("expected a confirmation message for DROP")
	}
	if _, ok := e.root.ResolveStream("orders"); ok {
		t.Fatal("expected orders stream to be dropped from the catalog")
	}
}

func contains(s, sub string) bool {
	return len(s) >= len(sub) && indexOf(s, sub) >= 0
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
