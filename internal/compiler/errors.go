package compiler

import (
	"errors"
	"fmt"

	"github.com/roach88/nysm/internal/ast"
)

// TypeError is a semantic error raised by TypeChecker or JoinKeyVisitor:
// it names the offending node's description and an explanation, carrying
// the node's source position the way the teacher's CompileError carries
// a cue/token.Pos — here stamped by the parser onto every ast.Expr
// (internal/ast.Position) rather than resolved through a pre-registered
// CUE token.File, since this grammar's lexer tracks line/column as it
// scans instead of parsing into a CUE value tree.
type TypeError struct {
	Node    string
	Message string
	Pos     ast.Position
}

func (e *TypeError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: type error at %s: %s", e.Pos, e.Node, e.Message)
	}
	return fmt.Sprintf("type error at %s: %s", e.Node, e.Message)
}

// PlanError is a schema/DAG construction failure raised by
// CreateExecPlan or PropagateSchemas.
type PlanError struct {
	Node    string
	Message string
}

func (e *PlanError) Error() string {
	return fmt.Sprintf("plan error at %s: %s", e.Node, e.Message)
}

// IsTypeError reports whether err is (or wraps) a *TypeError.
func IsTypeError(err error) bool {
	var te *TypeError
	return errors.As(err, &te)
}

// IsPlanError reports whether err is (or wraps) a *PlanError.
func IsPlanError(err error) bool {
	var pe *PlanError
	return errors.As(err, &pe)
}
