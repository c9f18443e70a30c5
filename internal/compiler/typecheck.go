package compiler

import (
	"github.com/roach88/nysm/internal/ast"
	"github.com/roach88/nysm/internal/queryir"
	"github.com/roach88/nysm/internal/symtab"
	"github.com/roach88/nysm/internal/types"
)

// TypeChecker walks an AST expression bottom-up, filling every node's
// mutable type slot (ast.Expr.SetType) and producing the elaborated,
// typed internal/queryir.Expr the physical builder and evaluator
// consume. Field references resolve through qs; function calls resolve
// through root and instantiate universal parameters per spec.md §4.1.
func TypeChecker(e ast.Expr, qs *queryScope, root *symtab.Table) (queryir.Expr, error) {
	switch v := e.(type) {
	case *ast.ConstantExpr:
		return checkConstant(v)
	case *ast.IdentifierExpr:
		return checkIdentifier(v, qs)
	case *ast.FieldRefExpr:
		return checkFieldRef(v, qs)
	case *ast.BinaryExpr:
		return checkBinary(v, qs, root)
	case *ast.UnaryExpr:
		return checkUnary(v, qs, root)
	case *ast.CallExpr:
		return checkCall(v, qs, root)
	case *ast.AliasedExpr:
		return TypeChecker(v.Inner, qs, root)
	default:
		return nil, &TypeError{Node: "expression", Pos: e.Pos(), Message: "unsupported expression node"}
	}
}

func checkConstant(c *ast.ConstantExpr) (queryir.Expr, error) {
	var t types.Type
	switch c.Value.(type) {
	case nil:
		t = types.P(types.NULL)
	case bool:
		t = types.P(types.BOOLEAN)
	case int64:
		t = types.P(types.INT)
	case float64:
		t = types.P(types.DOUBLE)
	case string:
		t = types.P(types.STRING)
	default:
		return nil, &TypeError{Node: "constant", Pos: c.Pos(), Message: "unrecognized literal value type"}
	}
	c.SetType(t)
	return queryir.Const{Value: c.Value, Typ: t}, nil
}

func checkIdentifier(id *ast.IdentifierExpr, qs *queryScope) (queryir.Expr, error) {
	b, err := qs.resolve(id.Qualifier, id.Name)
	if err != nil {
		return nil, &TypeError{Node: id.Name, Pos: id.Pos(), Message: err.Error()}
	}
	id.SetType(b.Column.Type)
	return queryir.FieldRef{Source: b.Source, Field: b.Column.Name, Typ: b.Column.Type}, nil
}

func checkFieldRef(f *ast.FieldRefExpr, qs *queryScope) (queryir.Expr, error) {
	b, err := qs.resolve(f.Source, f.Field)
	if err != nil {
		return nil, &TypeError{Node: f.Field, Pos: f.Pos(), Message: err.Error()}
	}
	f.SetType(b.Column.Type)
	return queryir.FieldRef{Source: b.Source, Field: b.Column.Name, Typ: b.Column.Type}, nil
}

func checkBinary(b *ast.BinaryExpr, qs *queryScope, root *symtab.Table) (queryir.Expr, error) {
	left, err := TypeChecker(b.Left, qs, root)
	if err != nil {
		return nil, err
	}
	right, err := TypeChecker(b.Right, qs, root)
	if err != nil {
		return nil, err
	}

	var resultType types.Type
	switch b.Op {
	case ast.OpAnd, ast.OpOr:
		if err := requirePromotesTo(left.Type(), types.P(types.BOOLEAN), b.Pos()); err != nil {
			return nil, &TypeError{Node: b.Op.String(), Pos: b.Pos(), Message: err.Error()}
		}
		if err := requirePromotesTo(right.Type(), types.P(types.BOOLEAN), b.Pos()); err != nil {
			return nil, &TypeError{Node: b.Op.String(), Pos: b.Pos(), Message: err.Error()}
		}
		resultType = types.P(types.BOOLEAN)
	case ast.OpEq, ast.OpNeq, ast.OpLt, ast.OpLte, ast.OpGt, ast.OpGte:
		if _, err := types.Meet(stripNull(left.Type()), stripNull(right.Type())); err != nil {
			return nil, &TypeError{Node: b.Op.String(), Pos: b.Pos(), Message: err.Error()}
		}
		resultType = types.P(types.BOOLEAN)
	default:
		meet, err := types.Meet(left.Type(), right.Type())
		if err != nil {
			return nil, &TypeError{Node: b.Op.String(), Pos: b.Pos(), Message: err.Error()}
		}
		if !types.IsNumeric(meet) {
			return nil, &TypeError{Node: b.Op.String(), Pos: b.Pos(), Message: "arithmetic operator requires numeric operands"}
		}
		resultType = meet
	}
	b.SetType(resultType)
	return queryir.Binary{Op: b.Op, Left: left, Right: right, Typ: resultType}, nil
}

func checkUnary(u *ast.UnaryExpr, qs *queryScope, root *symtab.Table) (queryir.Expr, error) {
	operand, err := TypeChecker(u.Operand, qs, root)
	if err != nil {
		return nil, err
	}

	var resultType types.Type
	switch u.Op {
	case ast.OpIsNull, ast.OpIsNotNull:
		resultType = types.P(types.BOOLEAN)
	case ast.OpNot:
		if err := requirePromotesTo(operand.Type(), types.MakeNullable(types.P(types.BOOLEAN)), u.Pos()); err != nil {
			return nil, &TypeError{Node: "NOT", Pos: u.Pos(), Message: err.Error()}
		}
		if types.IsNullable(operand.Type()) || types.Equal(operand.Type(), types.P(types.NULL)) {
			resultType = types.MakeNullable(types.P(types.BOOLEAN))
		} else {
			resultType = types.P(types.BOOLEAN)
		}
	case ast.OpNeg:
		if !types.IsNumeric(operand.Type()) {
			return nil, &TypeError{Node: "-", Pos: u.Pos(), Message: "unary - requires a numeric operand"}
		}
		resultType = operand.Type()
	default:
		return nil, &TypeError{Node: "unary", Pos: u.Pos(), Message: "unsupported unary operator"}
	}
	u.SetType(resultType)
	return queryir.Unary{Op: u.Op, Operand: operand, Typ: resultType}, nil
}

func checkCall(c *ast.CallExpr, qs *queryScope, root *symtab.Table) (queryir.Expr, error) {
	sig, ok := root.ResolveFunction(c.Function)
	if !ok {
		return nil, &TypeError{Node: c.Function, Pos: c.Pos(), Message: "unknown function"}
	}

	args := make([]queryir.Expr, len(c.Args))
	for i, a := range c.Args {
		elaborated, err := TypeChecker(a, qs, root)
		if err != nil {
			return nil, err
		}
		args[i] = elaborated
	}

	if !sig.Variadic && len(args) != len(sig.Params) {
		return nil, &TypeError{Node: c.Function, Pos: c.Pos(), Message: "wrong number of arguments"}
	}

	sub := types.NewSubstitution()
	actualsByAlias := make(map[*types.UniversalType][]types.Type)
	for i, arg := range args {
		param := sig.Params[paramIndex(i, len(sig.Params), sig.Variadic)]
		uni, isUniversal := param.(*types.UniversalType)
		if !isUniversal {
			if !types.PromotesTo(arg.Type(), param) {
				return nil, &TypeError{Node: c.Function, Pos: c.Pos(), Message: "argument type does not match parameter"}
			}
			continue
		}
		actualsByAlias[uni] = append(actualsByAlias[uni], arg.Type())
	}
	for uni, actuals := range actualsByAlias {
		resolved, err := types.Resolve(uni, actuals)
		if err != nil {
			return nil, &TypeError{Node: c.Function, Pos: c.Pos(), Message: err.Error()}
		}
		if err := sub.Bind(uni, resolved); err != nil {
			return nil, &TypeError{Node: c.Function, Pos: c.Pos(), Message: err.Error()}
		}
	}

	returnType := sig.Returns
	if uni, ok := sig.Returns.(*types.UniversalType); ok {
		resolved, err := sub.ReplaceUniversal(uni)
		if err != nil {
			return nil, &TypeError{Node: c.Function, Pos: c.Pos(), Message: err.Error()}
		}
		returnType = resolved
	}

	c.SetType(returnType)
	return queryir.Call{Function: c.Function, Args: args, Typ: returnType}, nil
}

// paramIndex maps argument index i to the signature's parameter-list
// index, clamping to the last parameter when the signature is variadic.
func paramIndex(i, numParams int, variadic bool) int {
	if variadic && i >= numParams {
		return numParams - 1
	}
	return i
}

func requirePromotesTo(from, to types.Type, pos ast.Position) error {
	if types.PromotesTo(from, to) {
		return nil
	}
	return &TypeError{Node: from.String(), Pos: pos, Message: "does not promote to " + to.String()}
}

func stripNull(t types.Type) types.Type {
	if n, ok := t.(types.Nullable); ok {
		return n.Of
	}
	return t
}
