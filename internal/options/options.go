package options

import (
	"fmt"
	"strconv"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// Recognized submit options keys (spec.md §6, "non-exhaustive").
const (
	AutowatchKey        = "rtengine.flow.autowatch"
	SubmitterSessionKey = "rtengine.query.submitter.session.id"
)

// schemaSrc types the two keys Submit actually reads. Unrecognized keys
// are left unconstrained — per spec.md §6 the set is "non-exhaustive",
// so a caller passing a forward-looking key the engine doesn't read yet
// isn't an error.
const schemaSrc = `
#Options: {
	"` + AutowatchKey + `"?: bool
	"` + SubmitterSessionKey + `"?: int
	...
}
`

// Error reports an options-map key that failed validation against the
// schema above.
type Error struct {
	Key     string
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: option %q: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Key, e.Message)
	}
	return fmt.Sprintf("option %q: %s", e.Key, e.Message)
}

// Validate checks raw against the recognized-key schema, returning an
// *Error naming the offending key on failure.
func Validate(raw map[string]any) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSrc).LookupPath(cue.ParsePath("#Options"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("options: internal schema error: %w", err)
	}

	val := ctx.Encode(raw)
	unified := schema.Unify(val)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return formatCUEError(err)
	}
	return nil
}

// ParseStrings converts a raw string-keyed map (e.g. repeated
// `--option key=value` CLI flags) into the typed map[string]any Submit
// expects, recognizing only AutowatchKey (bool) and
// SubmitterSessionKey (int64). Unrecognized keys pass through as
// strings unchanged and are also accepted by Validate, since the
// options map is explicitly open-ended.
func ParseStrings(raw map[string]string) (map[string]any, error) {
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		switch k {
		case AutowatchKey:
			b, err := strconv.ParseBool(v)
			if err != nil {
				return nil, &Error{Key: k, Message: fmt.Sprintf("not a bool: %q", v)}
			}
			out[k] = b
		case SubmitterSessionKey:
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return nil, &Error{Key: k, Message: fmt.Sprintf("not an int: %q", v)}
			}
			out[k] = n
		default:
			out[k] = v
		}
	}
	return out, nil
}

// formatCUEError extracts the first underlying CUE error and its
// source position, mirroring the teacher's formatCUEError
// (internal/compiler/concept.go).
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &Error{Key: "?", Message: err.Error()}
	}
	first := errs[0]
	key := "?"
	if len(first.Path()) > 0 {
		key = first.Path()[len(first.Path())-1]
	}
	positions := errors.Positions(first)
	if len(positions) > 0 {
		return &Error{Key: key, Message: first.Error(), Pos: positions[0]}
	}
	return &Error{Key: key, Message: first.Error()}
}
