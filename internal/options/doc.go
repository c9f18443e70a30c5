// Package options validates the submit options map (spec.md §6): a
// small, open-ended set of recognized keys (autowatch, submitter
// session id) laid out against a CUE schema, the same way the teacher
// validates concept-spec struct fields against CUE's own type system
// (internal/compiler/concept.go's CompileConcept), just applied to a
// flat key→value map instead of a nested concept struct.
package options
