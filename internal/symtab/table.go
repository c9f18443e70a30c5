package symtab

import (
	"fmt"

	"golang.org/x/text/cases"
)

// fold is the case-folding function used for identifier lookup
// throughout the table chain: rtengine identifiers are case-insensitive,
// same as standard SQL unquoted identifiers.
var fold = cases.Fold()

func key(name string) string {
	return fold.String(name)
}

// Table is one scope in the nested symbol table. Lookups that miss
// locally walk to Parent; the root Table is always the built-in
// function table (see Builtins()).
type Table struct {
	Parent  *Table
	symbols map[string]Symbol
}

// New creates an empty scope chained to parent. Pass nil for a root
// scope (only Builtins() should do this).
func New(parent *Table) *Table {
	return &Table{Parent: parent, symbols: make(map[string]Symbol)}
}

// Define adds a symbol to this scope. Define returns an error if a
// symbol with the same case-folded name already exists in this exact
// scope (shadowing a parent scope's symbol is allowed, redefining
// within one scope is not).
func (t *Table) Define(sym Symbol) error {
	k := key(sym.Name)
	if _, exists := t.symbols[k]; exists {
		return fmt.Errorf("symbol %q already defined in this scope", sym.Name)
	}
	t.symbols[k] = sym
	return nil
}

// Resolve looks up name in this scope, then walks outward to Parent.
func (t *Table) Resolve(name string) (Symbol, bool) {
	k := key(name)
	for scope := t; scope != nil; scope = scope.Parent {
		if sym, ok := scope.symbols[k]; ok {
			return sym, true
		}
	}
	return Symbol{}, false
}

// ResolveStream looks up a stream symbol by name.
func (t *Table) ResolveStream(name string) (*StreamSchema, bool) {
	sym, ok := t.Resolve(name)
	if !ok || sym.Kind != StreamSymbol {
		return nil, false
	}
	return sym.Stream, true
}

// ResolveFunction looks up a function symbol by name.
func (t *Table) ResolveFunction(name string) (*FunctionSig, bool) {
	sym, ok := t.Resolve(name)
	if !ok || sym.Kind != FunctionSymbol {
		return nil, false
	}
	return sym.Func, true
}

// DefineStream is a convenience wrapper for Define(Symbol{Kind: StreamSymbol, ...}).
func (t *Table) DefineStream(schema *StreamSchema) error {
	return t.Define(Symbol{Kind: StreamSymbol, Name: schema.Name, Stream: schema})
}

// StreamNames returns the names of every stream defined directly in
// this scope (not walking Parent), in no particular order. Used by
// SHOW STREAMS, which only ever lists user-declared streams sitting in
// the root catalog scope above the built-in function table.
func (t *Table) StreamNames() []string {
	var names []string
	for _, sym := range t.symbols {
		if sym.Kind == StreamSymbol {
			names = append(names, sym.Stream.Name)
		}
	}
	return names
}

// DropStream removes a previously defined stream from this exact scope.
// Returns false if no such stream is defined here.
func (t *Table) DropStream(name string) bool {
	k := key(name)
	if _, ok := t.symbols[k]; !ok {
		return false
	}
	delete(t.symbols, k)
	return true
}
