// Package ast declares the parse tree rtengine's parser produces: a
// sealed set of statement and expression nodes plus the clauses that
// compose them (source, join, where, group, having, window).
//
// Every Expr carries a mutable type slot (SetType/Type) filled in by the
// compiler's TypeChecker visitor; the AST package itself never computes
// types, it only stores the slot.
package ast
