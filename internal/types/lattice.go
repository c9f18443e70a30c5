package types

import "fmt"

// promotionEdges encodes the direct (non-transitive) primitive-to-primitive
// promotion edges of the lattice from spec.md §4.1. PromotesTo computes the
// transitive closure over these edges plus the NULL/NULLABLE rules.
var promotionEdges = map[Kind][]Kind{
	INT:    {BIGINT},
	BIGINT: {DOUBLE},
	FLOAT:  {DOUBLE},
}

// PromotesTo reports whether `from` promotes to `to` under the fixed,
// total lattice: reflexive, antisymmetric, and transitive across
// primitives; NULL promotes to NULLABLE(T) for every T; every T promotes
// to NULLABLE(T). Typeclasses are never a promotion target or source —
// they participate only via constraint satisfaction (SatisfiesConstraint).
func PromotesTo(from, to Type) bool {
	if Equal(from, to) {
		return true
	}

	// Every T promotes to NULLABLE(T) (including T itself already nullable,
	// handled by MakeNullable's flattening).
	if toNullable, ok := to.(Nullable); ok {
		if fromNullable, ok := from.(Nullable); ok {
			return PromotesTo(fromNullable.Of, toNullable.Of)
		}
		if fromPrim, ok := from.(Primitive); ok && fromPrim.Kind == NULL {
			return true
		}
		return PromotesTo(from, toNullable.Of)
	}

	fromPrim, fromOK := from.(Primitive)
	toPrim, toOK := to.(Primitive)
	if !fromOK || !toOK {
		return false
	}
	return reachablePrimitive(fromPrim.Kind, toPrim.Kind)
}

// reachablePrimitive is the transitive closure of promotionEdges via BFS.
func reachablePrimitive(from, to Kind) bool {
	if from == to {
		return true
	}
	visited := map[Kind]bool{from: true}
	queue := []Kind{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range promotionEdges[cur] {
			if next == to {
				return true
			}
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return false
}

// SatisfiesConstraint reports whether t satisfies the constraint c, where
// c is either a concrete Type (t must PromotesTo c) or a Typeclass
// (checked structurally).
func SatisfiesConstraint(t Type, c Type) bool {
	tc, isTypeclass := c.(Typeclass)
	if !isTypeclass {
		return PromotesTo(t, c)
	}
	switch tc.Kind {
	case TYPECLASS_ANY:
		return true
	case TYPECLASS_NUMERIC:
		return IsNumeric(t)
	case TYPECLASS_COMPARABLE:
		// Every concrete primitive (and NULLABLE thereof) in this closed
		// lattice supports equality/ordering comparison.
		return IsConcrete(t)
	default:
		return false
	}
}

// MeetError reports that no least upper bound exists for the given types.
type MeetError struct {
	Types []Type
}

func (e *MeetError) Error() string {
	return fmt.Sprintf("no common promotion target for types %v", e.Types)
}

// Meet computes the least upper bound of the given concrete types in the
// promotion lattice: commutative and associative (spec.md §8). Meet of a
// single type is itself. Meet is undefined (returns MeetError) for an
// empty list or when no common promotion target exists.
func Meet(ts ...Type) (Type, error) {
	if len(ts) == 0 {
		return nil, &MeetError{}
	}
	acc := ts[0]
	for _, t := range ts[1:] {
		next, err := meetPair(acc, t)
		if err != nil {
			return nil, &MeetError{Types: ts}
		}
		acc = next
	}
	return acc, nil
}

// meetPair computes the least upper bound of exactly two types.
func meetPair(a, b Type) (Type, error) {
	if Equal(a, b) {
		return a, nil
	}

	aNullable, aIsNull := a.(Nullable)
	bNullable, bIsNull := b.(Nullable)
	if aIsNull || bIsNull {
		var aBase, bBase Type = a, b
		if aIsNull {
			aBase = aNullable.Of
		}
		if bIsNull {
			bBase = bNullable.Of
		}
		base, err := meetPair(aBase, bBase)
		if err != nil {
			return nil, err
		}
		return MakeNullable(base), nil
	}

	aPrim, aOK := a.(Primitive)
	bPrim, bOK := b.(Primitive)
	if !aOK || !bOK {
		return nil, &MeetError{Types: []Type{a, b}}
	}

	if aPrim.Kind == NULL {
		return MakeNullable(b), nil
	}
	if bPrim.Kind == NULL {
		return MakeNullable(a), nil
	}

	if PromotesTo(a, b) {
		return b, nil
	}
	if PromotesTo(b, a) {
		return a, nil
	}
	// Neither promotes to the other (e.g. INT and FLOAT): take the
	// narrowest kind both promote to, if any.
	for k := BOOLEAN; k <= TIMESPAN; k++ {
		if PromotesTo(a, P(k)) && PromotesTo(b, P(k)) {
			return P(k), nil
		}
	}
	return nil, &MeetError{Types: []Type{a, b}}
}
