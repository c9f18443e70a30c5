package engine

import (
	"fmt"
	"strings"

	"github.com/roach88/nysm/internal/ast"
	"github.com/roach88/nysm/internal/ir"
)

// ExplainText renders the literal two-section dump spec.md scenario 2
// requires: a "Parse tree:" section followed by an "Execution plan:"
// section. stmt is the statement wrapped by EXPLAIN (Inner, not the
// ExplainStatement itself); spec is its compiled flow.
func ExplainText(stmt ast.Statement, spec *ir.FlowSpec) string {
	var b strings.Builder
	b.WriteString("Parse tree:\n")
	dumpStatement(&b, stmt, 0)
	b.WriteString("\nExecution plan:\n")
	if spec.Root == nil {
		b.WriteString("(no flow: DDL statement)\n")
	} else {
		dumpPlan(&b, spec.Root, 0)
	}
	return b.String()
}

func indent(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
}

func dumpStatement(b *strings.Builder, stmt ast.Statement, depth int) {
	indent(b, depth)
	switch s := stmt.(type) {
	case *ast.SelectStatement:
		b.WriteString("Select\n")
		indent(b, depth+1)
		fmt.Fprintf(b, "From: %s\n", sourceString(s.From))
		for _, j := range s.Joins {
			indent(b, depth+1)
			fmt.Fprintf(b, "Join: %s ON %s\n", sourceString(j.Source), dumpExpr(j.On))
		}
		if s.Where != nil {
			indent(b, depth+1)
			fmt.Fprintf(b, "Where: %s\n", dumpExpr(s.Where.Predicate))
		}
		if s.GroupBy != nil {
			indent(b, depth+1)
			fmt.Fprintf(b, "GroupBy: %s\n", dumpExprList(s.GroupBy.Keys))
		}
		if s.Having != nil {
			indent(b, depth+1)
			fmt.Fprintf(b, "Having: %s\n", dumpExpr(s.Having.Predicate))
		}
		indent(b, depth+1)
		b.WriteString("Projection:\n")
		for _, p := range s.Projection {
			indent(b, depth+2)
			fmt.Fprintf(b, "%s AS %s\n", dumpExpr(p.Inner), projectionLabel(p))
		}
		if s.Into != "" {
			indent(b, depth+1)
			fmt.Fprintf(b, "Into: %s\n", s.Into)
		}
	case *ast.CreateStreamStatement:
		fmt.Fprintf(b, "CreateStream %s(%s)\n", s.Name, columnsString(s.Columns))
	case *ast.DropStatement:
		fmt.Fprintf(b, "Drop %s\n", s.Name)
	case *ast.DescribeStatement:
		fmt.Fprintf(b, "Describe %s\n", s.Name)
	case *ast.ShowStatement:
		fmt.Fprintf(b, "Show %s\n", showKindString(s.Kind))
	case *ast.ExplainStatement:
		b.WriteString("Explain\n")
		dumpStatement(b, s.Inner, depth+1)
	default:
		fmt.Fprintf(b, "%T\n", stmt)
	}
}

func projectionLabel(p *ast.AliasedExpr) string {
	if p.Label != "" {
		return p.Label
	}
	if p.Alias != "" {
		return p.Alias
	}
	return "?"
}

func columnsString(cols []ast.ColumnDef) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprintf("%s %s", c.Name, c.Type)
	}
	return strings.Join(parts, ", ")
}

func showKindString(k ast.ShowKind) string {
	switch k {
	case ast.ShowStreams:
		return "STREAMS"
	case ast.ShowFlows:
		return "FLOWS"
	default:
		return "?"
	}
}

func sourceString(s ast.SourceClause) string {
	if s.Alias != "" {
		return fmt.Sprintf("%s AS %s", s.Stream, s.Alias)
	}
	return s.Stream
}

func dumpExprList(exprs []ast.Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = dumpExpr(e)
	}
	return strings.Join(parts, ", ")
}

func dumpExpr(e ast.Expr) string {
	switch v := e.(type) {
	case *ast.ConstantExpr:
		if v.Value == nil {
			return "NULL"
		}
		return fmt.Sprintf("%v", v.Value)
	case *ast.IdentifierExpr:
		if v.Qualifier != "" {
			return v.Qualifier + "." + v.Name
		}
		return v.Name
	case *ast.FieldRefExpr:
		return v.Source + "." + v.Field
	case *ast.BinaryExpr:
		return fmt.Sprintf("(%s %s %s)", dumpExpr(v.Left), v.Op, dumpExpr(v.Right))
	case *ast.UnaryExpr:
		return fmt.Sprintf("(%s %s)", v.Op, dumpExpr(v.Operand))
	case *ast.CallExpr:
		return fmt.Sprintf("%s(%s)", v.Function, dumpExprList(v.Args))
	case *ast.AliasedExpr:
		return dumpExpr(v.Inner)
	default:
		return fmt.Sprintf("%T", e)
	}
}

// dumpPlan walks a FlowSpec's logical DAG root-to-leaves (the natural
// order to read an execution plan: sink first, sources last).
func dumpPlan(b *strings.Builder, n ir.PlanNode, depth int) {
	indent(b, depth)
	fmt.Fprintf(b, "%s\n", planNodeString(n))
	for _, in := range n.Inputs() {
		dumpPlan(b, in, depth+1)
	}
}

func planNodeString(n ir.PlanNode) string {
	switch v := n.(type) {
	case *ir.SourceStreamNode:
		return fmt.Sprintf("SourceStream(%s)", v.Stream)
	case *ir.ProjectNode:
		labels := make([]string, len(v.Columns))
		for i, c := range v.Columns {
			labels[i] = c.Label
		}
		return fmt.Sprintf("Project(%s)", strings.Join(labels, ", "))
	case *ir.FilterNode:
		return "Filter"
	case *ir.AggregateNode:
		return fmt.Sprintf("Aggregate(%d keys, %d aggregates)", len(v.GroupKeys), len(v.Aggregates))
	case *ir.JoinNode:
		return "Join"
	case *ir.ConsoleOutputNode:
		return "ConsoleOutput"
	case *ir.MemoryOutputNode:
		return fmt.Sprintf("MemoryOutput(%s)", v.Name)
	default:
		return n.Kind()
	}
}
