package operator

import (
	"fmt"

	"github.com/roach88/nysm/internal/ir"
	"github.com/roach88/nysm/internal/queryir"
)

// Join performs an equi-join over Key, buffering rows from each side
// keyed by their join-key value and emitting a combined row for every
// match found so far when a new row arrives on the opposite side.
//
// TakeEvent on the uniform Operator interface carries only a row, with
// no side tag, so Join is never wired directly as a DAG node: the
// physical builder wires its two intake adapters (Left(), Right()) as
// the two actual inputs feeding the join, one per upstream. Both
// adapters close over the same *Join and forward into takeSide, which
// is where the side distinction lives.
type Join struct {
	Base
	Key queryir.JoinKey

	leftRows    map[string][]ir.Row
	rightRows   map[string][]ir.Row
	left        *joinIntake
	right       *joinIntake
	leftClosed  bool
	rightClosed bool
}

// joinIntake is a thin Operator adapter representing one side of a
// Join. It exists only so the physical builder has two distinct
// Operator values to wire as DAG inputs; all state lives on the
// shared *Join.
type joinIntake struct {
	parent   *Join
	fromLeft bool
}

func (i *joinIntake) Open() error { return nil }
func (i *joinIntake) Close() error {
	if i.fromLeft {
		i.parent.leftClosed = true
	} else {
		i.parent.rightClosed = true
	}
	return nil
}
func (i *joinIntake) TakeEvent(row ir.Row) error {
	return i.parent.takeSide(row, i.fromLeft)
}
func (i *joinIntake) CompleteWindow() error { return nil }
func (i *joinIntake) CloseUpstream() error  { return i.Close() }
func (i *joinIntake) IsClosed() bool {
	if i.fromLeft {
		return i.parent.leftClosed
	}
	return i.parent.rightClosed
}
func (i *joinIntake) Context() Context { return i.parent.Ctx }

// NewJoin constructs a Join operator over key, wired through ctx. Left
// and Right return the two Operator values the physical builder wires
// as the join's upstream inputs.
func NewJoin(key queryir.JoinKey, ctx Context) *Join {
	j := &Join{
		Base:      Base{Ctx: ctx},
		Key:       key,
		leftRows:  make(map[string][]ir.Row),
		rightRows: make(map[string][]ir.Row),
	}
	j.left = &joinIntake{parent: j, fromLeft: true}
	j.right = &joinIntake{parent: j, fromLeft: false}
	return j
}

// Left returns the Operator representing this join's left input.
func (j *Join) Left() Operator { return j.left }

// Right returns the Operator representing this join's right input.
func (j *Join) Right() Operator { return j.right }

func (j *Join) Open() error { return nil }

func (j *Join) Close() error {
	j.MarkClosed()
	return nil
}

// TakeEvent is unreachable on Join itself: the physical builder wires
// Left()/Right(), never the Join value directly, as DAG inputs.
func (j *Join) TakeEvent(row ir.Row) error {
	return fmt.Errorf("join operator has no single TakeEvent; wire Left()/Right() instead")
}

func (j *Join) CompleteWindow() error { return nil }

func (j *Join) CloseUpstream() error {
	return j.Close()
}

var _ Operator = (*Join)(nil)
var _ Operator = (*joinIntake)(nil)

func (j *Join) takeSide(row ir.Row, fromLeft bool) error {
	var own, other map[string][]ir.Row
	if fromLeft {
		own, other = j.leftRows, j.rightRows
	} else {
		own, other = j.rightRows, j.leftRows
	}

	keys := make([]string, 0, len(j.Key.Pairs))
	for _, pair := range j.Key.Pairs {
		ownField := pair.LeftField
		if !fromLeft {
			ownField = pair.RightField
		}
		v, ok := row.Get(ownField)
		if !ok {
			return fmt.Errorf("join key field %q not present in row", ownField)
		}
		k, err := valueKey(v)
		if err != nil {
			return err
		}
		keys = append(keys, k)
	}
	joinKey := joinKeyOf(keys)

	own[joinKey] = append(own[joinKey], row)

	for _, match := range other[joinKey] {
		var l, r ir.Row
		if fromLeft {
			l, r = row, match
		} else {
			l, r = match, row
		}
		if err := j.Ctx.Emit(combineRows(l, r)); err != nil {
			return err
		}
	}
	return nil
}

func valueKey(v ir.Value) (string, error) {
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func joinKeyOf(parts []string) string {
	out := ""
	for _, p := range parts {
		out += p + "\x00"
	}
	return out
}

func combineRows(l, r ir.Row) ir.Row {
	fields := make([]string, 0, len(l.Fields)+len(r.Fields))
	values := make([]ir.Value, 0, len(l.Fields)+len(r.Fields))
	fields = append(fields, l.Fields...)
	values = append(values, l.Values...)
	fields = append(fields, r.Fields...)
	values = append(values, r.Values...)
	return ir.Row{Fields: fields, Values: values}
}
