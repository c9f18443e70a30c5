// Package types implements rtengine's closed type lattice: the fixed set
// of primitive types, the NULLABLE(T) wrapper, the abstract typeclasses
// used only as constraints, and universal (variable) type unification.
//
// ARCHITECTURE:
//
// Type is a sealed interface (marker method pattern, same idiom as the
// teacher's ir.IRValue): only the types declared in this package may
// implement it, which lets every consumer use an exhaustive type switch.
//
// The promotion lattice is fixed and total (see Lattice in lattice.go):
// promotion is reflexive, antisymmetric, and transitive across
// primitives, NULL promotes to NULLABLE(T) for every T, and every T
// promotes to NULLABLE(T). Typeclasses are sinks in the lattice: they are
// consulted only to check a constraint, never produced by Meet.
//
// UniversalType unification (universal.go) mirrors the design note in
// spec.md §9: a universal is `{alias Symbol, constraints []Type}`,
// unified through a substitution map threaded through type checking; the
// universal itself is never mutated in place.
package types
