// Package queryir is the elaborated scalar-expression IR the type
// checker produces from internal/ast: every node is immutable and
// fully typed, in contrast to ast.Expr's mutable type slot.
//
// SEALED INTERFACES:
//
// Expr and Predicate are sealed interfaces using the marker method
// pattern: only types in this package implement them, so a backend can
// type-switch exhaustively.
//
// Expr covers the scalar-expression fragment operators evaluate at
// runtime: constants, field references, binary/unary operators, and
// function calls. Predicate covers the equality fragment JoinKeyVisitor
// pairs into join-key descriptors: Equal (field = literal), FieldEqual
// (left_field = right_field, the shape a join ON-clause must reduce
// to), and And (conjunction).
package queryir
