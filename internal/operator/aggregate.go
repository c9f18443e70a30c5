package operator

import (
	"fmt"

	"github.com/roach88/nysm/internal/ir"
	"github.com/roach88/nysm/internal/queryir"
)

// groupAccumulator tracks the running aggregate state for one group key.
type groupAccumulator struct {
	keyValues []ir.Value
	counts    []int64
	sums      []float64
	mins      []ir.Value
	maxs      []ir.Value
	seenAny   []bool
}

// Aggregate groups rows by GroupKeys and computes Aggregates, flushing
// one result row per group on CompleteWindow. The operator just
// accumulates until told to flush; the scheduler calls CompleteWindow
// only when the upstream operator reports ElementComplete. No
// ir.WindowSpec is consulted, so tumbling and hopping windows do not
// trigger flushes.
type Aggregate struct {
	Base
	GroupKeys  []queryir.Expr
	Aggregates []ir.AggregateColumn

	groups map[string]*groupAccumulator
	order  []string
}

// NewAggregate constructs an Aggregate operator over groupKeys and
// aggregates, wired through ctx.
func NewAggregate(groupKeys []queryir.Expr, aggregates []ir.AggregateColumn, ctx Context) *Aggregate {
	return &Aggregate{
		Base:       Base{Ctx: ctx},
		GroupKeys:  groupKeys,
		Aggregates: aggregates,
		groups:     make(map[string]*groupAccumulator),
	}
}

func (a *Aggregate) Open() error { return nil }

func (a *Aggregate) Close() error {
	a.MarkClosed()
	return nil
}

func (a *Aggregate) TakeEvent(row ir.Row) error {
	keyValues := make([]ir.Value, len(a.GroupKeys))
	for i, keyExpr := range a.GroupKeys {
		v, err := Eval(keyExpr, row)
		if err != nil {
			return err
		}
		keyValues[i] = v
	}
	groupKey, err := groupKeyString(keyValues)
	if err != nil {
		return err
	}
	acc, ok := a.groups[groupKey]
	if !ok {
		acc = &groupAccumulator{
			keyValues: keyValues,
			counts:    make([]int64, len(a.Aggregates)),
			sums:      make([]float64, len(a.Aggregates)),
			mins:      make([]ir.Value, len(a.Aggregates)),
			maxs:      make([]ir.Value, len(a.Aggregates)),
			seenAny:   make([]bool, len(a.Aggregates)),
		}
		a.groups[groupKey] = acc
		a.order = append(a.order, groupKey)
	}
	for i, agg := range a.Aggregates {
		if err := accumulate(acc, i, agg, row); err != nil {
			return err
		}
	}
	return nil
}

func accumulate(acc *groupAccumulator, i int, agg ir.AggregateColumn, row ir.Row) error {
	if agg.Function == "COUNT" && agg.Arg == nil {
		acc.counts[i]++
		return nil
	}
	v, err := Eval(agg.Arg, row)
	if err != nil {
		return err
	}
	if _, isNull := v.(ir.Null); isNull {
		return nil
	}
	acc.counts[i]++
	if f, ok := asFloat(v); ok {
		acc.sums[i] += f
	}
	if !acc.seenAny[i] {
		acc.mins[i] = v
		acc.maxs[i] = v
		acc.seenAny[i] = true
		return nil
	}
	if lessValue(v, acc.mins[i]) {
		acc.mins[i] = v
	}
	if lessValue(acc.maxs[i], v) {
		acc.maxs[i] = v
	}
	return nil
}

func lessValue(a, b ir.Value) bool {
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if aok && bok {
		return af < bf
	}
	as, aok := a.(ir.Str)
	bs, bok := b.(ir.Str)
	if aok && bok {
		return string(as) < string(bs)
	}
	return false
}

// CompleteWindow flushes one result row per accumulated group, then
// resets accumulator state for the next window.
func (a *Aggregate) CompleteWindow() error {
	for _, key := range a.order {
		acc := a.groups[key]
		fields := make([]string, 0, len(a.GroupKeys)+len(a.Aggregates))
		values := make([]ir.Value, 0, len(a.GroupKeys)+len(a.Aggregates))
		for i := range a.GroupKeys {
			fields = append(fields, fmt.Sprintf("key_%d", i))
			values = append(values, acc.keyValues[i])
		}
		for i, agg := range a.Aggregates {
			fields = append(fields, agg.Label)
			values = append(values, aggregateResult(agg, acc, i))
		}
		if err := a.Ctx.Emit(ir.Row{Fields: fields, Values: values}); err != nil {
			return err
		}
	}
	a.groups = make(map[string]*groupAccumulator)
	a.order = nil
	return nil
}

func aggregateResult(agg ir.AggregateColumn, acc *groupAccumulator, i int) ir.Value {
	switch agg.Function {
	case "COUNT":
		return ir.BigInt(acc.counts[i])
	case "SUM":
		if !acc.seenAny[i] {
			return ir.Null{}
		}
		return ir.Double(acc.sums[i])
	case "AVG":
		if acc.counts[i] == 0 {
			return ir.Null{}
		}
		return ir.Double(acc.sums[i] / float64(acc.counts[i]))
	case "MIN":
		if !acc.seenAny[i] {
			return ir.Null{}
		}
		return acc.mins[i]
	case "MAX":
		if !acc.seenAny[i] {
			return ir.Null{}
		}
		return acc.maxs[i]
	default:
		return ir.Null{}
	}
}

func groupKeyString(values []ir.Value) (string, error) {
	obj := make(ir.Obj, len(values))
	for i, v := range values {
		obj[fmt.Sprintf("%d", i)] = v
	}
	data, err := ir.MarshalCanonical(obj)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (a *Aggregate) CloseUpstream() error {
	if err := a.CompleteWindow(); err != nil {
		return err
	}
	return a.Close()
}
