package types

import "fmt"

// Type is a sealed interface implemented only by the types declared in
// this package. Sealing (the unexported marker method, same idiom as the
// teacher's ir.IRValue) lets every consumer use an exhaustive type switch
// without fear of an external implementation sneaking in.
type Type interface {
	// String renders the type the way it would appear in an EXPLAIN dump
	// or a type-error message.
	String() string

	typeNode()
}

// Kind enumerates the closed set of primitive type names from spec.md §3.
type Kind int

const (
	BOOLEAN Kind = iota
	INT
	BIGINT
	FLOAT
	DOUBLE
	STRING
	TIMESTAMP
	TIMESPAN
	NULL
)

var kindNames = map[Kind]string{
	BOOLEAN:   "BOOLEAN",
	INT:       "INT",
	BIGINT:    "BIGINT",
	FLOAT:     "FLOAT",
	DOUBLE:    "DOUBLE",
	STRING:    "STRING",
	TIMESTAMP: "TIMESTAMP",
	TIMESPAN:  "TIMESPAN",
	NULL:      "NULL",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Primitive is a concrete, non-nullable, non-typeclass type.
type Primitive struct {
	Kind Kind
}

func (Primitive) typeNode() {}

func (p Primitive) String() string { return p.Kind.String() }

// P is shorthand for constructing a Primitive, e.g. P(INT).
func P(k Kind) Primitive { return Primitive{Kind: k} }

// Nullable wraps a type as NULLABLE(T). NULLABLE(NULLABLE(T)) is
// normalized to NULLABLE(T) by the Nullable constructor — nullability
// does not nest per spec.md's promotion lattice ("every T promotes to
// NULLABLE(T)": there is exactly one nullable wrapper per base type).
type Nullable struct {
	Of Type
}

func (Nullable) typeNode() {}

func (n Nullable) String() string { return "NULLABLE(" + n.Of.String() + ")" }

// MakeNullable wraps t in NULLABLE, flattening nested NULLABLE(NULLABLE(_)).
func MakeNullable(t Type) Nullable {
	if n, ok := t.(Nullable); ok {
		return n
	}
	return Nullable{Of: t}
}

// TypeclassKind enumerates the abstract constraints from spec.md §3.
// Typeclasses are never instantiated; they exist only as constraints on
// UniversalType declarations.
type TypeclassKind int

const (
	TYPECLASS_NUMERIC TypeclassKind = iota
	TYPECLASS_COMPARABLE
	TYPECLASS_ANY
)

var typeclassNames = map[TypeclassKind]string{
	TYPECLASS_NUMERIC:    "TYPECLASS_NUMERIC",
	TYPECLASS_COMPARABLE: "TYPECLASS_COMPARABLE",
	TYPECLASS_ANY:        "TYPECLASS_ANY",
}

// Typeclass is an abstract constraint type: a sink in the promotion
// lattice, consulted only for constraint satisfaction.
type Typeclass struct {
	Kind TypeclassKind
}

func (Typeclass) typeNode() {}

func (t Typeclass) String() string {
	if s, ok := typeclassNames[t.Kind]; ok {
		return s
	}
	return fmt.Sprintf("Typeclass(%d)", int(t.Kind))
}

// IsPrimitive reports whether t is a bare Primitive (not NULLABLE, not a
// typeclass, not a universal).
func IsPrimitive(t Type) bool {
	_, ok := t.(Primitive)
	return ok
}

// IsNumeric reports whether t (after stripping one level of NULLABLE) is
// one of the numeric primitives.
func IsNumeric(t Type) bool {
	p, ok := baseKind(t)
	if !ok {
		return false
	}
	switch p {
	case INT, BIGINT, FLOAT, DOUBLE:
		return true
	}
	return false
}

// IsNullable reports whether t is a NULLABLE(_) wrapper.
func IsNullable(t Type) bool {
	_, ok := t.(Nullable)
	return ok
}

// IsConcrete reports whether t is fully resolved: a Primitive, or
// NULLABLE of a concrete type. Typeclasses and UniversalType are never
// concrete.
func IsConcrete(t Type) bool {
	switch v := t.(type) {
	case Primitive:
		return true
	case Nullable:
		return IsConcrete(v.Of)
	default:
		return false
	}
}

// baseKind extracts the primitive Kind underneath at most one NULLABLE
// wrapper, or (0, false) if t is not ultimately a Primitive.
func baseKind(t Type) (Kind, bool) {
	switch v := t.(type) {
	case Primitive:
		return v.Kind, true
	case Nullable:
		return baseKind(v.Of)
	default:
		return 0, false
	}
}

// Equal reports structural equality of two concrete (or typeclass) types.
// UniversalType equality has its own rule (universal.go): two universals
// are equal iff they share both alias and constraint list.
func Equal(a, b Type) bool {
	switch av := a.(type) {
	case Primitive:
		bv, ok := b.(Primitive)
		return ok && av.Kind == bv.Kind
	case Nullable:
		bv, ok := b.(Nullable)
		return ok && Equal(av.Of, bv.Of)
	case Typeclass:
		bv, ok := b.(Typeclass)
		return ok && av.Kind == bv.Kind
	case *UniversalType:
		bv, ok := b.(*UniversalType)
		return ok && av.equalUniversal(bv)
	default:
		return false
	}
}
