package operator

import (
	"github.com/roach88/nysm/internal/ir"
)

// Project computes a new row shape from each incoming row by
// evaluating a fixed set of labeled expressions.
type Project struct {
	Base
	Columns []ir.ProjectColumn
}

// NewProject constructs a Project operator computing columns, wired
// through ctx.
func NewProject(columns []ir.ProjectColumn, ctx Context) *Project {
	return &Project{Base: Base{Ctx: ctx}, Columns: columns}
}

func (p *Project) Open() error { return nil }

func (p *Project) Close() error {
	p.MarkClosed()
	return nil
}

func (p *Project) TakeEvent(row ir.Row) error {
	fields := make([]string, len(p.Columns))
	values := make([]ir.Value, len(p.Columns))
	for i, col := range p.Columns {
		v, err := Eval(col.Expr, row)
		if err != nil {
			return err
		}
		fields[i] = col.Label
		values[i] = v
	}
	return p.Ctx.Emit(ir.Row{Fields: fields, Values: values})
}

func (p *Project) CompleteWindow() error { return nil }

func (p *Project) CloseUpstream() error {
	return p.Close()
}
