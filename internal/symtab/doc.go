// Package symtab implements the nested symbol table that backs field
// resolution and function lookup during type checking: a chain of
// scopes, each a plain identifier-to-symbol map, with lookups walking
// outward to the parent. The root of every chain is the built-in
// function table.
package symtab
