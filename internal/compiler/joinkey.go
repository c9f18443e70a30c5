package compiler

import (
	"fmt"

	"github.com/roach88/nysm/internal/ast"
	"github.com/roach88/nysm/internal/queryir"
	"github.com/roach88/nysm/internal/symtab"
)

// JoinKeyVisitor requires a type-checked ON-clause expression (already
// elaborated by TypeChecker) and the two joined schemas; it reduces the
// expression to a queryir.Predicate tree and delegates to
// queryir.ExtractJoinKey for the equi-join pairing and orientation. pos
// is the original (pre-type-check) ON-clause node's source position,
// since the elaborated queryir.Expr it operates over carries none.
func JoinKeyVisitor(on queryir.Expr, pos ast.Position, leftAlias, rightAlias string, leftSchema, rightSchema *symtab.StreamSchema) (queryir.JoinKey, error) {
	pred, err := toPredicate(on)
	if err != nil {
		return queryir.JoinKey{}, &TypeError{Node: "ON", Pos: pos, Message: err.Error()}
	}
	leftFields := fieldSet(leftSchema)
	rightFields := fieldSet(rightSchema)
	key, err := queryir.ExtractJoinKey(pred, leftAlias, rightAlias, leftFields, rightFields)
	if err != nil {
		return queryir.JoinKey{}, &TypeError{Node: "ON", Pos: pos, Message: err.Error()}
	}
	return key, nil
}

func fieldSet(schema *symtab.StreamSchema) map[string]bool {
	set := make(map[string]bool, len(schema.Columns))
	for _, c := range schema.Columns {
		set[c.Name] = true
	}
	return set
}

// toPredicate reduces an elaborated scalar expression to the narrow
// equality-fragment Predicate tree join elaboration operates over.
func toPredicate(e queryir.Expr) (queryir.Predicate, error) {
	bin, ok := e.(queryir.Binary)
	if !ok {
		return nil, fmt.Errorf("ON-clause must be a conjunction of equalities, got %T", e)
	}
	switch bin.Op {
	case ast.OpAnd:
		left, err := toPredicate(bin.Left)
		if err != nil {
			return nil, err
		}
		right, err := toPredicate(bin.Right)
		if err != nil {
			return nil, err
		}
		return queryir.And{Predicates: []queryir.Predicate{left, right}}, nil
	case ast.OpEq:
		lf, lok := bin.Left.(queryir.FieldRef)
		rf, rok := bin.Right.(queryir.FieldRef)
		if lok && rok {
			return queryir.FieldEqual{LeftField: lf.Field, RightField: rf.Field}, nil
		}
		if lok {
			c, ok := bin.Right.(queryir.Const)
			if !ok {
				return nil, fmt.Errorf("unsupported ON-clause equality shape")
			}
			return queryir.Equal{Field: lf.Field, Value: c}, nil
		}
		return nil, fmt.Errorf("ON-clause equality must reference a field on at least one side")
	default:
		return nil, fmt.Errorf("ON-clause operator %s is not an equality or conjunction", bin.Op)
	}
}
