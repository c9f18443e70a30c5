package parser

import "fmt"

// ParseError is a syntactic failure: the parser accepts exactly one
// statement per submission and stops at the first error (spec.md §6/§7).
type ParseError struct {
	Message string
	Line    int
	Column  int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}
