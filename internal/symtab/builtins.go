package symtab

import "github.com/roach88/nysm/internal/types"

// Builtins constructs the root scope of every symbol table chain: the
// fixed set of SQL built-in functions. It has no Parent.
func Builtins() *Table {
	t := New(nil)
	for _, sig := range builtinSigs() {
		sig := sig
		_ = t.Define(Symbol{Kind: FunctionSymbol, Name: sig.Name, Func: &sig})
	}
	return t
}

func builtinSigs() []FunctionSig {
	numeric := types.NewUniversal("'a", types.Typeclass{Kind: types.TYPECLASS_NUMERIC})
	comparable := types.NewUniversal("'b", types.Typeclass{Kind: types.TYPECLASS_COMPARABLE})
	return []FunctionSig{
		{
			Name:    "ABS",
			Params:  []types.Type{numeric},
			Returns: numeric,
		},
		{
			// COALESCE exercises universal-type resolution across a
			// variable argument count: every argument and the result
			// share one alias, so the checker's meet() runs over all of
			// them at once.
			Name:     "COALESCE",
			Params:   []types.Type{comparable},
			Returns:  comparable,
			Variadic: true,
		},
		{
			Name:    "CONCAT",
			Params:  []types.Type{types.P(types.STRING), types.P(types.STRING)},
			Returns: types.P(types.STRING),
		},
		{
			Name:    "NOW",
			Params:  nil,
			Returns: types.P(types.TIMESTAMP),
		},
	}
}
