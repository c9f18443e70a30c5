package ast

import (
	"fmt"

	"github.com/roach88/nysm/internal/types"
)

// Position is a 1-based line/column source location, stamped onto
// every expression node by the parser so a later semantic error can
// name where in the input it occurred.
type Position struct {
	Line   int
	Column int
}

// IsValid reports whether p names a real source location, as opposed
// to the zero value a node built outside the parser (e.g. by a test)
// carries.
func (p Position) IsValid() bool { return p.Line > 0 }

func (p Position) String() string {
	if !p.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Expr is a sealed interface implemented only by the expression node
// types declared in this package (same marker-method idiom as
// internal/types.Type and the teacher's queryir.Query).
type Expr interface {
	exprNode()

	// Type returns the type slot filled in by the type checker. It is
	// nil until TypeChecker has run.
	Type() types.Type

	// SetType fills the mutable type slot. Called exactly once per node
	// by TypeChecker.
	SetType(t types.Type)

	// Pos returns the node's source position, stamped by the parser at
	// construction time. Zero-value (IsValid() == false) for a node
	// built outside the parser.
	Pos() Position

	// SetPos stamps the node's source position. Called once by the
	// parser at construction time.
	SetPos(p Position)
}

// typeSlot is embedded by every Expr implementation to provide the
// mutable type slot and source position without repeating the same
// methods everywhere.
type typeSlot struct {
	t   types.Type
	pos Position
}

func (s *typeSlot) Type() types.Type     { return s.t }
func (s *typeSlot) SetType(t types.Type) { s.t = t }
func (s *typeSlot) Pos() Position        { return s.pos }
func (s *typeSlot) SetPos(p Position)    { s.pos = p }

// ConstantExpr is a literal value with a declared type (e.g. 42, 'x',
// TRUE, NULL).
type ConstantExpr struct {
	typeSlot
	Value interface{} // int64, float64, string, bool, or nil for NULL
}

func (*ConstantExpr) exprNode() {}

// IdentifierExpr references an unqualified or qualified name (a field, a
// stream alias, or a stream.field path) resolved through the symbol
// table by TypeChecker.
type IdentifierExpr struct {
	typeSlot
	Qualifier string // stream alias, or "" if unqualified
	Name      string
}

func (*IdentifierExpr) exprNode() {}

// BinaryOp enumerates the binary operators the parser recognizes.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
	OpAnd
	OpOr
)

var binaryOpNames = map[BinaryOp]string{
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpMod: "%",
	OpEq: "=", OpNeq: "<>", OpLt: "<", OpLte: "<=", OpGt: ">", OpGte: ">=",
	OpAnd: "AND", OpOr: "OR",
}

func (op BinaryOp) String() string { return binaryOpNames[op] }

// BinaryExpr is a two-operand expression; TypeChecker computes its
// result type via the promotion lattice.
type BinaryExpr struct {
	typeSlot
	Op          BinaryOp
	Left, Right Expr
}

func (*BinaryExpr) exprNode() {}

// UnaryOp enumerates the unary operators the parser recognizes.
type UnaryOp int

const (
	OpNeg UnaryOp = iota
	OpNot
	OpIsNull
	OpIsNotNull
)

var unaryOpNames = map[UnaryOp]string{
	OpNeg: "-", OpNot: "NOT", OpIsNull: "IS NULL", OpIsNotNull: "IS NOT NULL",
}

func (op UnaryOp) String() string { return unaryOpNames[op] }

// UnaryExpr is a single-operand expression.
type UnaryExpr struct {
	typeSlot
	Op      UnaryOp
	Operand Expr
}

func (*UnaryExpr) exprNode() {}

// CallExpr is a function-call expression; TypeChecker instantiates any
// universal types declared by the callee's signature against Args.
type CallExpr struct {
	typeSlot
	Function string
	Args     []Expr
}

func (*CallExpr) exprNode() {}

// AliasedExpr names a projected expression; AssignFieldLabels fills in
// Label when Alias is empty.
type AliasedExpr struct {
	typeSlot
	Inner Expr
	Alias string // user-supplied, may be ""
	Label string // canonical label, always non-empty after AssignFieldLabels
}

func (*AliasedExpr) exprNode() {}

// FieldRefExpr is a fully-qualified reference to a field produced by a
// specific plan node, introduced by JoinNameVisitor to disambiguate
// post-join field references. It replaces an IdentifierExpr in-place.
type FieldRefExpr struct {
	typeSlot
	Source string // qualified source name, e.g. "left" or a stream alias
	Field  string
}

func (*FieldRefExpr) exprNode() {}
