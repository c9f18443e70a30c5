package operator

import "github.com/roach88/nysm/internal/ir"

// Source reads rows handed to it by the ingestion path (the only
// operator with no upstream) and emits them unchanged into its
// context.
type Source struct {
	Base
	Stream string
}

// NewSource constructs a Source operator over the given stream, wired
// through ctx.
func NewSource(stream string, ctx Context) *Source {
	return &Source{Base: Base{Ctx: ctx}, Stream: stream}
}

func (s *Source) Open() error { return nil }

func (s *Source) Close() error {
	s.MarkClosed()
	return nil
}

func (s *Source) TakeEvent(row ir.Row) error {
	return s.Ctx.Emit(row)
}

// CompleteWindow is a no-op for Source: a source has no buffered state
// to flush.
func (s *Source) CompleteWindow() error { return nil }

func (s *Source) CloseUpstream() error {
	return s.Close()
}
