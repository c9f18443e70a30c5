// Package compiler runs the visitor pipeline over a parsed statement
// and lowers the typed AST into a logical FlowSpec (CreateExecPlan,
// PropagateSchemas). AssignFieldLabels runs first over the whole
// statement; each JOIN ON-clause then goes through TypeChecker followed
// by JoinKeyVisitor; each WHERE, projection, GROUP BY and aggregate
// argument expression goes through JoinNameVisitor followed by
// TypeChecker. JoinNameVisitor therefore runs ahead of TypeChecker on
// those expressions, not after JoinKeyVisitor. Each visitor raises a
// single failure; the pipeline stops at the first one.
package compiler
