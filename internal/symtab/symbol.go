package symtab

import "github.com/roach88/nysm/internal/types"

// Kind enumerates the three symbol shapes a lookup can resolve to.
type Kind int

const (
	StreamSymbol Kind = iota
	FieldSymbol
	FunctionSymbol
)

// StreamSchema is the ordered (name, Type) list a declared stream
// carries, as recorded by CREATE STREAM.
type StreamSchema struct {
	Name    string
	Columns []Column
}

// Column is one (name, Type) pair of a stream's schema.
type Column struct {
	Name string
	Type types.Type
}

// ColumnType returns the type of the named column, or (nil, false) if
// the schema has no such column.
func (s StreamSchema) ColumnType(name string) (types.Type, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c.Type, true
		}
	}
	return nil, false
}

// FunctionSig is a built-in function's signature: a list of declared
// parameter types (which may be *types.UniversalType) and a declared
// return type (commonly the same universal, instantiated per call by
// the type checker).
type FunctionSig struct {
	Name    string
	Params  []types.Type
	Returns types.Type
	// Variadic, when true, means the last Params entry repeats for any
	// trailing actual arguments (used by COALESCE).
	Variadic bool
}

// Symbol is a resolved symtab entry. Exactly one of Stream/Field/Func is
// populated, selected by Kind.
type Symbol struct {
	Kind   Kind
	Name   string
	Stream *StreamSchema
	Field  *Column
	Func   *FunctionSig
}
