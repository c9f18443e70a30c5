package types

import (
	"fmt"
	"strings"
)

// UniversalType is a named type variable carrying an alias (e.g. "'a") and
// a list of constraint types (concrete types or typeclasses) it must
// promote to once resolved. Two universals with the same alias and the
// same constraint list are equal; universals with different aliases are
// independent even if their constraints coincide (spec.md §3).
//
// UniversalType is never mutated in place (spec.md §9 design note):
// resolution produces an entry in a Substitution, not a write to the
// UniversalType value itself.
type UniversalType struct {
	Alias       string
	Constraints []Type
}

func (*UniversalType) typeNode() {}

func (u *UniversalType) String() string {
	if len(u.Constraints) == 0 {
		return u.Alias
	}
	parts := make([]string, len(u.Constraints))
	for i, c := range u.Constraints {
		parts[i] = c.String()
	}
	return fmt.Sprintf("%s:{%s}", u.Alias, strings.Join(parts, ","))
}

// equalUniversal implements the alias+constraint-list equality rule.
func (u *UniversalType) equalUniversal(o *UniversalType) bool {
	if u.Alias != o.Alias || len(u.Constraints) != len(o.Constraints) {
		return false
	}
	for i := range u.Constraints {
		if !Equal(u.Constraints[i], o.Constraints[i]) {
			return false
		}
	}
	return true
}

// NewUniversal constructs a UniversalType with the given alias and
// constraints.
func NewUniversal(alias string, constraints ...Type) *UniversalType {
	return &UniversalType{Alias: alias, Constraints: constraints}
}

// ResolutionError reports a failed universal-type resolution, naming the
// universal, the computed candidate (if any), and the violated
// constraint.
type ResolutionError struct {
	Universal *UniversalType
	Candidate Type
	Violated  Type
	Reason    string
}

func (e *ResolutionError) Error() string {
	if e.Violated != nil {
		return fmt.Sprintf("universal %s resolved to %s, which does not satisfy constraint %s",
			e.Universal.Alias, typeString(e.Candidate), e.Violated.String())
	}
	return fmt.Sprintf("universal %s: %s", e.Universal.Alias, e.Reason)
}

func typeString(t Type) string {
	if t == nil {
		return "<none>"
	}
	return t.String()
}

// Resolve computes the concrete type bound to a universal given the list
// of actual argument types seen at the same call site for that alias
// (spec.md §4.1):
//
//	candidate := meet(actuals...)
//	if candidate is bare NULL: candidate := NULLABLE(NULL)
//	candidate must be concrete and satisfy every declared constraint
//
// Resolve does not consult or mutate a Substitution; callers combine it
// with one (see Substitution below) to enforce "same alias resolves
// identically within a call".
func Resolve(u *UniversalType, actuals []Type) (Type, error) {
	if len(actuals) == 0 {
		return nil, &ResolutionError{Universal: u, Reason: "no actual arguments bound to this universal"}
	}

	candidate, err := Meet(actuals...)
	if err != nil {
		return nil, &ResolutionError{Universal: u, Reason: err.Error()}
	}

	if p, ok := candidate.(Primitive); ok && p.Kind == NULL {
		candidate = MakeNullable(p)
	}

	if !IsConcrete(candidate) {
		return nil, &ResolutionError{Universal: u, Candidate: candidate, Reason: "candidate type is not concrete"}
	}

	for _, c := range u.Constraints {
		if !SatisfiesConstraint(candidate, c) {
			return nil, &ResolutionError{Universal: u, Candidate: candidate, Violated: c}
		}
	}

	return candidate, nil
}

// Substitution is a per-expression map from UniversalType alias to its
// resolved concrete Type, threaded through type checking (spec.md §4.1).
// Keying by alias (not by *UniversalType pointer identity) is what makes
// "two universals participating in the same call with the same alias
// must resolve identically" a structural guarantee: every occurrence of
// alias "'a" within one statement shares one substitution slot.
type Substitution struct {
	bindings map[string]Type
}

// NewSubstitution creates an empty substitution environment.
func NewSubstitution() *Substitution {
	return &Substitution{bindings: make(map[string]Type)}
}

// Bind records the resolved type for a universal's alias. Bind returns an
// error if the alias is already bound to a different concrete type —
// within one statement, the same alias must resolve identically
// (spec.md §4.1).
func (s *Substitution) Bind(u *UniversalType, resolved Type) error {
	if existing, ok := s.bindings[u.Alias]; ok {
		if !Equal(existing, resolved) {
			return fmt.Errorf("universal %s resolved inconsistently: %s vs %s",
				u.Alias, existing.String(), resolved.String())
		}
		return nil
	}
	s.bindings[u.Alias] = resolved
	return nil
}

// Lookup returns the bound concrete type for alias, if any.
func (s *Substitution) Lookup(alias string) (Type, bool) {
	t, ok := s.bindings[alias]
	return t, ok
}

// ReplaceUniversal substitutes t using the substitution map, recursing
// into Nullable. It errors if t is (or wraps) a UniversalType with no
// binding — an alias with no resolution is a type-check bug, not a
// runtime possibility, per spec.md's invariant that every universal
// resolves before expression evaluation.
func (s *Substitution) ReplaceUniversal(t Type) (Type, error) {
	switch v := t.(type) {
	case *UniversalType:
		resolved, ok := s.bindings[v.Alias]
		if !ok {
			return nil, fmt.Errorf("no binding for universal %s", v.Alias)
		}
		return resolved, nil
	case Nullable:
		inner, err := s.ReplaceUniversal(v.Of)
		if err != nil {
			return nil, err
		}
		return MakeNullable(inner), nil
	default:
		return t, nil
	}
}
