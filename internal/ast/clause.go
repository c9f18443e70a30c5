package ast

// ColumnDef names a single column in a CREATE STREAM schema.
type ColumnDef struct {
	Name string
	Type string // type name as written by the user, resolved later
}

// SourceClause names one FROM-list entry, optionally aliased.
type SourceClause struct {
	Stream string
	Alias  string // "" if unaliased; resolves to Stream
}

// JoinType enumerates supported join kinds. The portable fragment is
// inner-only (spec.md §3); LEFT/RIGHT/FULL are parsed but rejected by
// compiler.CreateExecPlan with a TypeError rather than silently
// misbehaving.
type JoinType int

const (
	JoinInner JoinType = iota
	JoinLeft
	JoinRight
	JoinFull
)

// JoinClause is one JOIN ... ON ... entry following the first source.
type JoinClause struct {
	Type   JoinType
	Source SourceClause
	On     Expr
}

// WhereClause is the optional filter predicate.
type WhereClause struct {
	Predicate Expr
}

// GroupByClause lists the grouping key expressions.
type GroupByClause struct {
	Keys []Expr
}

// HavingClause is the optional post-aggregation filter.
type HavingClause struct {
	Predicate Expr
}

// WindowKind enumerates supported windowing strategies for aggregation.
type WindowKind int

const (
	WindowNone WindowKind = iota
	WindowTumbling
	WindowHopping
)

// WindowClause describes an aggregation's windowing parameters.
type WindowClause struct {
	Kind     WindowKind
	Size     string // duration literal, e.g. "10s"
	Advance  string // hop advance, only meaningful for WindowHopping
}
