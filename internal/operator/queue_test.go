package operator

import (
	"testing"

	"github.com/roach88/nysm/internal/ir"
)

func TestQueueEnqueueDequeueOrder(t *testing.T) {
	q := NewQueue(nil, 2)
	q.Enqueue(ir.Row{Fields: []string{"a"}, Values: []ir.Value{ir.Int(1)}})
	q.Enqueue(ir.Row{Fields: []string{"a"}, Values: []ir.Value{ir.Int(2)}})

	row, ok := q.TryDequeue()
	if !ok {
		t.Fatalf("expected a row")
	}
	if v, _ := row.Get("a"); v != ir.Int(1) {
		t.Errorf("expected first row to be 1, got %v", v)
	}
	row, ok = q.TryDequeue()
	if !ok || row.Values[0] != ir.Int(2) {
		t.Errorf("expected second row to be 2, got %v, ok=%v", row, ok)
	}
	if _, ok := q.TryDequeue(); ok {
		t.Errorf("expected empty queue after draining")
	}
}

func TestQueueEnqueueNeverBlocksPastCapacity(t *testing.T) {
	q := NewQueue(nil, 1)
	// A single-threaded scheduler calls Enqueue synchronously from
	// within take_event; it must never block even once the nominal
	// capacity is exceeded, or the one goroutine that would drain it
	// deadlocks against itself.
	for i := 0; i < 5; i++ {
		q.Enqueue(ir.Row{Fields: []string{"a"}, Values: []ir.Value{ir.Int(int64(i))}})
	}
	if !q.Over() {
		t.Errorf("expected queue to report Over() past its nominal capacity")
	}
	if q.Len() != 5 {
		t.Errorf("expected all 5 rows retained, got %d", q.Len())
	}
}

func TestQueueEnqueueAfterCloseIsNoop(t *testing.T) {
	q := NewQueue(nil, 4)
	q.Close()
	q.Enqueue(ir.Row{Fields: []string{"a"}, Values: []ir.Value{ir.Int(1)}})
	if q.Len() != 0 {
		t.Errorf("expected Enqueue after Close to be dropped, got len=%d", q.Len())
	}
}
