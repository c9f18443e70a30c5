package queryir

import "fmt"

// ExtractJoinKey walks a join ON-clause predicate and produces the
// structured JoinKey descriptor JoinKeyVisitor needs: every conjunct
// must be a FieldEqual pairing one field from leftSource with one field
// from rightSource (spec.md §4.2). Equal (field = literal) conjuncts and
// any predicate shape other than an equi-join pairing are rejected —
// the portable fragment this engine elaborates to is equi-join only.
func ExtractJoinKey(p Predicate, leftSource, rightSource string, leftFields, rightFields map[string]bool) (JoinKey, error) {
	var pairs []FieldEqual
	var walk func(p Predicate) error
	walk = func(p Predicate) error {
		switch pred := p.(type) {
		case And:
			for _, sub := range pred.Predicates {
				if err := walk(sub); err != nil {
					return err
				}
			}
			return nil
		case FieldEqual:
			fe, err := orientPair(pred, leftFields, rightFields)
			if err != nil {
				return err
			}
			pairs = append(pairs, fe)
			return nil
		case Equal:
			return fmt.Errorf("join predicate on field %q compares to a literal; joins require left_field = right_field", pred.Field)
		default:
			return fmt.Errorf("unsupported join predicate %T; only equi-join conjunctions are supported", p)
		}
	}
	if p == nil {
		return JoinKey{}, fmt.Errorf("join requires an ON-clause")
	}
	if err := walk(p); err != nil {
		return JoinKey{}, err
	}
	if len(pairs) == 0 {
		return JoinKey{}, fmt.Errorf("join ON-clause produced no equality pairs")
	}
	return JoinKey{Pairs: pairs}, nil
}

// orientPair ensures a FieldEqual's LeftField/RightField actually
// correspond to leftSource/rightSource, swapping if the parser emitted
// them in ON-clause textual order rather than join-side order.
func orientPair(fe FieldEqual, leftFields, rightFields map[string]bool) (FieldEqual, error) {
	if leftFields[fe.LeftField] && rightFields[fe.RightField] {
		return fe, nil
	}
	if leftFields[fe.RightField] && rightFields[fe.LeftField] {
		return FieldEqual{LeftField: fe.RightField, RightField: fe.LeftField}, nil
	}
	return FieldEqual{}, fmt.Errorf("join predicate %s = %s does not pair one left field with one right field", fe.LeftField, fe.RightField)
}
