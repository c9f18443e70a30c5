// Package ir provides the logical plan representation: FlowSpecification,
// a DAG of typed plan nodes produced by the compiler's plan builder, plus
// Value, the sealed runtime value representation rows carry through
// operators and snapshots carry in the named memory-output store.
//
// This package contains type definitions and pure encoding helpers only.
// Among internal packages it depends only on internal/types and
// internal/queryir (which itself depends only on internal/ast and
// internal/types), keeping ir close to the foundation with no circular
// dependencies.
package ir
