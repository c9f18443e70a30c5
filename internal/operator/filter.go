package operator

import (
	"github.com/roach88/nysm/internal/ir"
	"github.com/roach88/nysm/internal/queryir"
)

// Filter drops rows that don't satisfy Predicate (NULL treated as
// false, per EvalPredicate).
type Filter struct {
	Base
	Predicate queryir.Expr
}

// NewFilter constructs a Filter operator over predicate, wired through
// ctx.
func NewFilter(predicate queryir.Expr, ctx Context) *Filter {
	return &Filter{Base: Base{Ctx: ctx}, Predicate: predicate}
}

func (f *Filter) Open() error { return nil }

func (f *Filter) Close() error {
	f.MarkClosed()
	return nil
}

func (f *Filter) TakeEvent(row ir.Row) error {
	ok, err := EvalPredicate(f.Predicate, row)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	return f.Ctx.Emit(row)
}

func (f *Filter) CompleteWindow() error { return nil }

func (f *Filter) CloseUpstream() error {
	return f.Close()
}
