package compiler

import (
	"fmt"

	"github.com/roach88/nysm/internal/ast"
	"github.com/roach88/nysm/internal/symtab"
)

// fieldBinding is one column visible in a query's FROM/JOIN list,
// tagged with the source alias it came from.
type fieldBinding struct {
	Source string
	Column symtab.Column
}

// queryScope is the query-local field scope built from a statement's
// source clauses: a flat name -> binding map, with names seen from
// more than one source marked ambiguous and requiring qualification.
type queryScope struct {
	bindings  map[string]fieldBinding
	ambiguous map[string]bool
}

func newQueryScope() *queryScope {
	return &queryScope{
		bindings:  make(map[string]fieldBinding),
		ambiguous: make(map[string]bool),
	}
}

func (qs *queryScope) addSource(alias string, schema *symtab.StreamSchema) {
	for _, col := range schema.Columns {
		if _, exists := qs.bindings[col.Name]; exists {
			qs.ambiguous[col.Name] = true
		}
		qs.bindings[col.Name] = fieldBinding{Source: alias, Column: col}
		qualified := alias + "." + col.Name
		qs.bindings[qualified] = fieldBinding{Source: alias, Column: col}
	}
}

// resolve looks up a (possibly qualified) field reference.
func (qs *queryScope) resolve(qualifier, name string) (fieldBinding, error) {
	if qualifier != "" {
		b, ok := qs.bindings[qualifier+"."+name]
		if !ok {
			return fieldBinding{}, fmt.Errorf("unknown field %q on source %q", name, qualifier)
		}
		return b, nil
	}
	if qs.ambiguous[name] {
		return fieldBinding{}, fmt.Errorf("ambiguous field reference %q: qualify with a source alias", name)
	}
	b, ok := qs.bindings[name]
	if !ok {
		return fieldBinding{}, fmt.Errorf("unknown field %q", name)
	}
	return b, nil
}

// buildQueryScope resolves every source in a SELECT's FROM/JOIN list
// against root and assembles the flat field scope TypeChecker resolves
// identifiers through.
func buildQueryScope(root *symtab.Table, stmt *ast.SelectStatement) (*queryScope, error) {
	qs := newQueryScope()
	schema, ok := root.ResolveStream(stmt.From.Stream)
	if !ok {
		return nil, &PlanError{Node: stmt.From.Stream, Message: "undeclared stream"}
	}
	alias := stmt.From.Alias
	if alias == "" {
		alias = stmt.From.Stream
	}
	qs.addSource(alias, schema)

	for _, join := range stmt.Joins {
		schema, ok := root.ResolveStream(join.Source.Stream)
		if !ok {
			return nil, &PlanError{Node: join.Source.Stream, Message: "undeclared stream"}
		}
		alias := join.Source.Alias
		if alias == "" {
			alias = join.Source.Stream
		}
		qs.addSource(alias, schema)
	}
	return qs, nil
}
