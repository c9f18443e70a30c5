package compiler

import "github.com/roach88/nysm/internal/ast"

// AssignFieldLabels fills Label on every projected expression: the
// user-supplied Alias if present, otherwise an auto-generated label
// derived from the inner expression. Labels must be unique within the
// projection; collisions are broken by suffixing _2, _3, ...
func AssignFieldLabels(stmt *ast.SelectStatement) error {
	seen := make(map[string]int)
	for _, proj := range stmt.Projection {
		base := proj.Alias
		if base == "" {
			base = autoLabel(proj.Inner)
		}
		label := base
		seen[base]++
		if n := seen[base]; n > 1 {
			label = suffixLabel(base, n)
		}
		proj.Label = label
	}
	return nil
}

func suffixLabel(base string, n int) string {
	return base + "_" + itoa(n)
}

func itoa(n int) string {
	if n < 10 {
		return string(rune('0' + n))
	}
	// Fall back for the (unlikely) projection with 10+ duplicate labels.
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

func autoLabel(e ast.Expr) string {
	switch v := e.(type) {
	case *ast.IdentifierExpr:
		return v.Name
	case *ast.FieldRefExpr:
		return v.Field
	case *ast.CallExpr:
		return v.Function
	default:
		return "col"
	}
}
