package queryir

import (
	"github.com/roach88/nysm/internal/ast"
	"github.com/roach88/nysm/internal/types"
)

// Expr is a sealed interface implemented only by the expression node
// types declared in this package.
type Expr interface {
	exprNode()
	Type() types.Type
}

// Const is a literal value of a known concrete type.
type Const struct {
	Value any
	Typ   types.Type
}

func (Const) exprNode()         {}
func (c Const) Type() types.Type { return c.Typ }

// FieldRef is a reference to a named field produced by a specific
// source, fully qualified (no ambiguity survives JoinNameVisitor).
type FieldRef struct {
	Source string
	Field  string
	Typ    types.Type
}

func (FieldRef) exprNode()         {}
func (f FieldRef) Type() types.Type { return f.Typ }

// Binary is an elaborated binary operator expression.
type Binary struct {
	Op          ast.BinaryOp
	Left, Right Expr
	Typ         types.Type
}

func (Binary) exprNode()         {}
func (b Binary) Type() types.Type { return b.Typ }

// Unary is an elaborated unary operator expression.
type Unary struct {
	Op      ast.UnaryOp
	Operand Expr
	Typ     types.Type
}

func (Unary) exprNode()         {}
func (u Unary) Type() types.Type { return u.Typ }

// Call is an elaborated function call, with any universal parameter
// types already resolved to concrete types in Typ and in each Args
// element's own Type().
type Call struct {
	Function string
	Args     []Expr
	Typ      types.Type
}

func (Call) exprNode()         {}
func (c Call) Type() types.Type { return c.Typ }

// Predicate is a sealed interface for the equality fragment used by
// filter/join-key elaboration.
type Predicate interface {
	predicateNode()
}

// Equal is a field = literal predicate.
type Equal struct {
	Field string
	Value Const
}

func (Equal) predicateNode() {}

// FieldEqual is a left_field = right_field predicate: the shape
// JoinKeyVisitor requires every join ON-clause conjunct to reduce to.
type FieldEqual struct {
	LeftField  string
	RightField string
}

func (FieldEqual) predicateNode() {}

// And is a conjunction of predicates; empty Predicates means "always
// true".
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// JoinKey is the structured descriptor JoinKeyVisitor emits per join:
// the list of equi-join field pairs pulled out of the ON-clause.
type JoinKey struct {
	Pairs []FieldEqual
}
