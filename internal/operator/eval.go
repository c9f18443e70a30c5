package operator

import (
	"fmt"
	"math"
	"time"

	"github.com/roach88/nysm/internal/ast"
	"github.com/roach88/nysm/internal/ir"
	"github.com/roach88/nysm/internal/queryir"
)

// Eval evaluates an elaborated scalar expression against a row.
// The compiler has already rejected ill-typed expressions, so the
// runtime failures here are unresolved field references (a plan-builder
// bug, not a user error) and division or modulo by zero.
func Eval(e queryir.Expr, row ir.Row) (ir.Value, error) {
	switch v := e.(type) {
	case queryir.Const:
		return constValue(v.Value), nil
	case queryir.FieldRef:
		val, ok := row.Get(v.Field)
		if !ok {
			return nil, fmt.Errorf("field %q not present in row", v.Field)
		}
		return val, nil
	case queryir.Binary:
		return evalBinary(v, row)
	case queryir.Unary:
		return evalUnary(v, row)
	case queryir.Call:
		return evalCall(v, row)
	default:
		return nil, fmt.Errorf("unsupported expression type %T", e)
	}
}

// EvalPredicate evaluates a boolean-typed expression, treating NULL as
// false (standard SQL WHERE-clause semantics).
func EvalPredicate(e queryir.Expr, row ir.Row) (bool, error) {
	v, err := Eval(e, row)
	if err != nil {
		return false, err
	}
	b, ok := v.(ir.Bool)
	if !ok {
		if _, isNull := v.(ir.Null); isNull {
			return false, nil
		}
		return false, fmt.Errorf("predicate evaluated to non-boolean value %T", v)
	}
	return bool(b), nil
}

func constValue(v any) ir.Value {
	switch val := v.(type) {
	case nil:
		return ir.Null{}
	case bool:
		return ir.Bool(val)
	case int64:
		return ir.Int(val)
	case float64:
		return ir.Double(val)
	case string:
		return ir.Str(val)
	case ir.Value:
		return val
	default:
		return ir.Null{}
	}
}

func evalUnary(u queryir.Unary, row ir.Row) (ir.Value, error) {
	operand, err := Eval(u.Operand, row)
	if err != nil {
		return nil, err
	}
	switch u.Op {
	case ast.OpIsNull:
		_, isNull := operand.(ir.Null)
		return ir.Bool(isNull), nil
	case ast.OpIsNotNull:
		_, isNull := operand.(ir.Null)
		return ir.Bool(!isNull), nil
	case ast.OpNot:
		b, ok := operand.(ir.Bool)
		if !ok {
			if _, isNull := operand.(ir.Null); isNull {
				return ir.Null{}, nil
			}
			return nil, fmt.Errorf("NOT applied to non-boolean value %T", operand)
		}
		return ir.Bool(!b), nil
	case ast.OpNeg:
		return negate(operand)
	default:
		return nil, fmt.Errorf("unsupported unary operator %v", u.Op)
	}
}

func negate(v ir.Value) (ir.Value, error) {
	switch val := v.(type) {
	case ir.Null:
		return ir.Null{}, nil
	case ir.Int:
		return ir.Int(-val), nil
	case ir.BigInt:
		return ir.BigInt(-val), nil
	case ir.Float:
		return ir.Float(-val), nil
	case ir.Double:
		return ir.Double(-val), nil
	default:
		return nil, fmt.Errorf("unary - applied to non-numeric value %T", v)
	}
}

func evalBinary(b queryir.Binary, row ir.Row) (ir.Value, error) {
	left, err := Eval(b.Left, row)
	if err != nil {
		return nil, err
	}
	right, err := Eval(b.Right, row)
	if err != nil {
		return nil, err
	}

	switch b.Op {
	case ast.OpAnd, ast.OpOr:
		return evalLogical(b.Op, left, right)
	case ast.OpEq, ast.OpNeq, ast.OpLt, ast.OpLte, ast.OpGt, ast.OpGte:
		return evalCompare(b.Op, left, right)
	default:
		return evalArith(b.Op, left, right)
	}
}

func evalLogical(op ast.BinaryOp, left, right ir.Value) (ir.Value, error) {
	lb, lIsNull := asTriBool(left)
	rb, rIsNull := asTriBool(right)
	switch op {
	case ast.OpAnd:
		if (!lIsNull && !lb) || (!rIsNull && !rb) {
			return ir.Bool(false), nil
		}
		if lIsNull || rIsNull {
			return ir.Null{}, nil
		}
		return ir.Bool(lb && rb), nil
	case ast.OpOr:
		if (!lIsNull && lb) || (!rIsNull && rb) {
			return ir.Bool(true), nil
		}
		if lIsNull || rIsNull {
			return ir.Null{}, nil
		}
		return ir.Bool(lb || rb), nil
	default:
		return nil, fmt.Errorf("not a logical operator: %v", op)
	}
}

func asTriBool(v ir.Value) (val bool, isNull bool) {
	switch b := v.(type) {
	case ir.Bool:
		return bool(b), false
	case ir.Null:
		return false, true
	default:
		return false, true
	}
}

func evalCompare(op ast.BinaryOp, left, right ir.Value) (ir.Value, error) {
	if isNullValue(left) || isNullValue(right) {
		return ir.Null{}, nil
	}
	lf, lok := asFloat(left)
	rf, rok := asFloat(right)
	if lok && rok {
		return ir.Bool(compareFloat(op, lf, rf)), nil
	}
	ls, lok := left.(ir.Str)
	rs, rok := right.(ir.Str)
	if lok && rok {
		return ir.Bool(compareString(op, string(ls), string(rs))), nil
	}
	lb, lok := left.(ir.Bool)
	rb, rok := right.(ir.Bool)
	if lok && rok && (op == ast.OpEq || op == ast.OpNeq) {
		eq := lb == rb
		if op == ast.OpNeq {
			eq = !eq
		}
		return ir.Bool(eq), nil
	}
	return nil, fmt.Errorf("cannot compare values of type %T and %T", left, right)
}

func compareFloat(op ast.BinaryOp, l, r float64) bool {
	switch op {
	case ast.OpEq:
		return l == r
	case ast.OpNeq:
		return l != r
	case ast.OpLt:
		return l < r
	case ast.OpLte:
		return l <= r
	case ast.OpGt:
		return l > r
	case ast.OpGte:
		return l >= r
	}
	return false
}

func compareString(op ast.BinaryOp, l, r string) bool {
	switch op {
	case ast.OpEq:
		return l == r
	case ast.OpNeq:
		return l != r
	case ast.OpLt:
		return l < r
	case ast.OpLte:
		return l <= r
	case ast.OpGt:
		return l > r
	case ast.OpGte:
		return l >= r
	}
	return false
}

func evalArith(op ast.BinaryOp, left, right ir.Value) (ir.Value, error) {
	if isNullValue(left) || isNullValue(right) {
		return ir.Null{}, nil
	}
	lf, lok := asFloat(left)
	rf, rok := asFloat(right)
	if !lok || !rok {
		return nil, fmt.Errorf("arithmetic operator %v requires numeric operands, got %T and %T", op, left, right)
	}
	var result float64
	switch op {
	case ast.OpAdd:
		result = lf + rf
	case ast.OpSub:
		result = lf - rf
	case ast.OpMul:
		result = lf * rf
	case ast.OpDiv:
		if rf == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		result = lf / rf
	case ast.OpMod:
		if rf == 0 {
			return nil, fmt.Errorf("modulo by zero")
		}
		result = math.Mod(lf, rf)
	default:
		return nil, fmt.Errorf("unsupported arithmetic operator %v", op)
	}
	return widestResultType(left, right, result), nil
}

func isNullValue(v ir.Value) bool {
	_, ok := v.(ir.Null)
	return ok
}

func asFloat(v ir.Value) (float64, bool) {
	switch val := v.(type) {
	case ir.Int:
		return float64(val), true
	case ir.BigInt:
		return float64(val), true
	case ir.Float:
		return float64(val), true
	case ir.Double:
		return float64(val), true
	default:
		return 0, false
	}
}

// widestResultType picks the result Value variant by the wider of the
// two operand kinds, mirroring the type checker's promotion lattice at
// the value level (INT,BIGINT,FLOAT widen toward DOUBLE).
func widestResultType(left, right ir.Value, result float64) ir.Value {
	rank := func(v ir.Value) int {
		switch v.(type) {
		case ir.Int:
			return 0
		case ir.BigInt:
			return 1
		case ir.Float:
			return 2
		case ir.Double:
			return 3
		default:
			return 0
		}
	}
	maxRank := rank(left)
	if r := rank(right); r > maxRank {
		maxRank = r
	}
	switch maxRank {
	case 0:
		return ir.Int(int64(result))
	case 1:
		return ir.BigInt(int64(result))
	case 2:
		return ir.Float(float32(result))
	default:
		return ir.Double(result)
	}
}

func evalCall(c queryir.Call, row ir.Row) (ir.Value, error) {
	args := make([]ir.Value, len(c.Args))
	for i, a := range c.Args {
		v, err := Eval(a, row)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	switch c.Function {
	case "ABS":
		if len(args) != 1 {
			return nil, fmt.Errorf("ABS takes exactly one argument")
		}
		return negateIfNeg(args[0])
	case "COALESCE":
		for _, a := range args {
			if !isNullValue(a) {
				return a, nil
			}
		}
		return ir.Null{}, nil
	case "CONCAT":
		var out string
		for _, a := range args {
			s, ok := a.(ir.Str)
			if !ok {
				return nil, fmt.Errorf("CONCAT requires string arguments")
			}
			out += string(s)
		}
		return ir.Str(out), nil
	case "NOW":
		return ir.Timestamp(time.Now().UTC()), nil
	default:
		return nil, fmt.Errorf("unknown function %q", c.Function)
	}
}

func negateIfNeg(v ir.Value) (ir.Value, error) {
	f, ok := asFloat(v)
	if !ok {
		if isNullValue(v) {
			return ir.Null{}, nil
		}
		return nil, fmt.Errorf("ABS requires a numeric argument, got %T", v)
	}
	if f >= 0 {
		return v, nil
	}
	return negate(v)
}
