package operator

import (
	"testing"

	"github.com/roach88/nysm/internal/ir"
	"github.com/roach88/nysm/internal/queryir"
)

type captureContext struct {
	rows []ir.Row
}

func (c *captureContext) Emit(row ir.Row) error {
	c.rows = append(c.rows, row)
	return nil
}
func (c *captureContext) Poster() ControlPoster { return nil }

func TestJoinEmitsOnMatch(t *testing.T) {
	cap := &captureContext{}
	key := queryir.JoinKey{Pairs: []queryir.FieldEqual{{LeftField: "id", RightField: "id"}}}
	j := NewJoin(key, cap)

	left := ir.Row{Fields: []string{"id", "name"}, Values: []ir.Value{ir.Int(1), ir.Str("alice")}}
	right := ir.Row{Fields: []string{"id", "age"}, Values: []ir.Value{ir.Int(1), ir.Int(30)}}

	if err := j.Left().TakeEvent(left); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cap.rows) != 0 {
		t.Fatalf("expected no match yet, got %d rows", len(cap.rows))
	}
	if err := j.Right().TakeEvent(right); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cap.rows) != 1 {
		t.Fatalf("expected one match, got %d", len(cap.rows))
	}
	got := cap.rows[0]
	if len(got.Fields) != 4 {
		t.Fatalf("expected 4 combined fields, got %d", len(got.Fields))
	}
}

func TestJoinNoMatchOnDifferentKeys(t *testing.T) {
	cap := &captureContext{}
	key := queryir.JoinKey{Pairs: []queryir.FieldEqual{{LeftField: "id", RightField: "id"}}}
	j := NewJoin(key, cap)

	left := ir.Row{Fields: []string{"id"}, Values: []ir.Value{ir.Int(1)}}
	right := ir.Row{Fields: []string{"id"}, Values: []ir.Value{ir.Int(2)}}

	_ = j.Left().TakeEvent(left)
	_ = j.Right().TakeEvent(right)
	if len(cap.rows) != 0 {
		t.Fatalf("expected no match, got %d", len(cap.rows))
	}
}
