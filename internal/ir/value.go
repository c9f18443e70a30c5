package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"time"
	"unicode/utf16"
)

// Value is a sealed interface representing a runtime row value. Only the
// types in this file implement it, so every consumer can type-switch
// exhaustively. Value mirrors internal/types.Kind's concrete members
// exactly: every Kind but NULL has exactly one Value constructor, plus
// Null for both NULL and any NULLABLE(T) in the null state.
type Value interface {
	irValue()
}

// Null represents a NULL value of any type.
type Null struct{}

func (Null) irValue() {}

func (Null) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

// Bool is a BOOLEAN value.
type Bool bool

func (Bool) irValue() {}

// Int is an INT value (32-bit range enforced by the type checker, stored
// widened).
type Int int64

func (Int) irValue() {}

// BigInt is a BIGINT value.
type BigInt int64

func (BigInt) irValue() {}

// Float is a FLOAT value.
type Float float32

func (Float) irValue() {}

// Double is a DOUBLE value.
type Double float64

func (Double) irValue() {}

// Str is a STRING value.
type Str string

func (Str) irValue() {}

// Timestamp is a TIMESTAMP value.
type Timestamp time.Time

func (Timestamp) irValue() {}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(t).Format(time.RFC3339Nano))
}

// Timespan is a TIMESPAN value (a duration).
type Timespan time.Duration

func (Timespan) irValue() {}

func (t Timespan) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(t).String())
}

// Row is an ordered set of named Values, the unit operators pass to one
// another via take_event/emit.
type Row struct {
	Fields []string
	Values []Value
}

// Get returns the value for a named field, or (nil, false).
func (r Row) Get(name string) (Value, bool) {
	for i, f := range r.Fields {
		if f == name {
			return r.Values[i], true
		}
	}
	return nil, false
}

// Obj is a map of string keys to Values, used for canonical snapshot
// encoding in the named memory-output store.
type Obj map[string]Value

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code
// units), used by MarshalJSON and by canonical hashing so that identical
// logical content always serializes byte-identically.
func (o Obj) SortedKeys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// compareKeysRFC8785 compares strings using UTF-16 code unit ordering,
// per RFC 8785; Go's default string comparison uses UTF-8 byte order,
// which disagrees with RFC 8785 for code points above U+FFFF.
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	minLen := min(len(b16), len(a16))
	for i := 0; i < minLen; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}
	if len(a16) < len(b16) {
		return -1
	}
	if len(a16) > len(b16) {
		return 1
	}
	return 0
}

// MarshalJSON implements json.Marshaler for Obj with sorted keys.
func (o Obj) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.SortedKeys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", k, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')
		valBytes, err := MarshalValue(o[k])
		if err != nil {
			return nil, fmt.Errorf("marshal value for key %q: %w", k, err)
		}
		buf.Write(valBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalValue marshals a single Value to JSON bytes.
func MarshalValue(v Value) ([]byte, error) {
	switch val := v.(type) {
	case nil, Null:
		return []byte("null"), nil
	case Bool:
		return json.Marshal(bool(val))
	case Int:
		return json.Marshal(int64(val))
	case BigInt:
		return json.Marshal(int64(val))
	case Float:
		return json.Marshal(float32(val))
	case Double:
		return json.Marshal(float64(val))
	case Str:
		return json.Marshal(string(val))
	case Timestamp:
		return val.MarshalJSON()
	case Timespan:
		return val.MarshalJSON()
	default:
		return nil, fmt.Errorf("unknown Value type: %T", v)
	}
}

// RowToObj converts a Row to an Obj for canonical encoding.
func RowToObj(r Row) Obj {
	o := make(Obj, len(r.Fields))
	for i, f := range r.Fields {
		o[f] = r.Values[i]
	}
	return o
}
