package compiler

import "github.com/roach88/nysm/internal/ast"

// JoinNameVisitor rewrites ambiguous field references into qualified
// ast.FieldRefExpr nodes once a statement has more than one source
// (i.e. after a join). Single-source statements are left untouched:
// there is nothing to disambiguate.
func JoinNameVisitor(e ast.Expr, qs *queryScope, multiSource bool) (ast.Expr, error) {
	if !multiSource {
		return e, nil
	}
	switch v := e.(type) {
	case *ast.IdentifierExpr:
		b, err := qs.resolve(v.Qualifier, v.Name)
		if err != nil {
			return nil, &TypeError{Node: v.Name, Pos: v.Pos(), Message: err.Error()}
		}
		rewritten := &ast.FieldRefExpr{Source: b.Source, Field: b.Column.Name}
		rewritten.SetType(v.Type())
		rewritten.SetPos(v.Pos())
		return rewritten, nil
	case *ast.BinaryExpr:
		left, err := JoinNameVisitor(v.Left, qs, multiSource)
		if err != nil {
			return nil, err
		}
		right, err := JoinNameVisitor(v.Right, qs, multiSource)
		if err != nil {
			return nil, err
		}
		v.Left, v.Right = left, right
		return v, nil
	case *ast.UnaryExpr:
		operand, err := JoinNameVisitor(v.Operand, qs, multiSource)
		if err != nil {
			return nil, err
		}
		v.Operand = operand
		return v, nil
	case *ast.CallExpr:
		for i, arg := range v.Args {
			rewritten, err := JoinNameVisitor(arg, qs, multiSource)
			if err != nil {
				return nil, err
			}
			v.Args[i] = rewritten
		}
		return v, nil
	case *ast.AliasedExpr:
		inner, err := JoinNameVisitor(v.Inner, qs, multiSource)
		if err != nil {
			return nil, err
		}
		v.Inner = inner
		return v, nil
	default:
		return e, nil
	}
}
