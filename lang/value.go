package lang

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Type is the runtime type of a [Value].
//
// Types are ordered by generality: a value may be promoted to any type of
// higher rank without losing information, never to a lower one.
type Type int

const (
	TypeBool  Type = iota // bool
	TypeUint              // uint
	TypeInt               // int
	TypeFloat             // float
)

func (t Type) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeUint:
		return "uint"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	default:
		return "Type(" + strconv.Itoa(int(t)) + ")"
	}
}

// IsInteger reports whether t is one of the integer types.
func (t Type) IsInteger() bool { return t == TypeUint || t == TypeInt }

// Value is a tagged runtime value: a signed or unsigned 64-bit integer, a
// 64-bit float, or a boolean.
//
// The zero Value is the boolean false.
type Value struct {
	f   float64
	i   int64
	u   uint64
	typ Type
	b   bool
}

// IntValue returns a signed integer Value.
func IntValue(i int64) Value { return Value{typ: TypeInt, i: i} }

// UintValue returns an unsigned integer Value.
func UintValue(u uint64) Value { return Value{typ: TypeUint, u: u} }

// FloatValue returns a floating-point Value.
func FloatValue(f float64) Value { return Value{typ: TypeFloat, f: f} }

// BoolValue returns a boolean Value.
func BoolValue(b bool) Value { return Value{typ: TypeBool, b: b} }

// Type returns the runtime type of v.
func (v Value) Type() Type { return v.typ }

// AsInt returns the payload of a TypeInt value.
func (v Value) AsInt() int64 { return v.i }

// AsUint returns the payload of a TypeUint value.
func (v Value) AsUint() uint64 { return v.u }

// AsFloat returns the payload of a TypeFloat value.
func (v Value) AsFloat() float64 { return v.f }

// AsBool returns the payload of a TypeBool value.
func (v Value) AsBool() bool { return v.b }

// Native returns the payload of v as a Go value of the matching type.
func (v Value) Native() any {
	switch v.typ {
	case TypeUint:
		return v.u
	case TypeInt:
		return v.i
	case TypeFloat:
		return v.f
	default:
		return v.b
	}
}

// Equal reports whether v and w have the same type and payload.
// Floats compare with ==, so NaN is never equal to itself.
func (v Value) Equal(w Value) bool {
	if v.typ != w.typ {
		return false
	}

	switch v.typ {
	case TypeUint:
		return v.u == w.u
	case TypeInt:
		return v.i == w.i
	case TypeFloat:
		return v.f == w.f
	default:
		return v.b == w.b
	}
}

// String returns the canonical rendering of v: integers without decoration,
// floats in decimal form, and booleans as true or false.
func (v Value) String() string {
	switch v.typ {
	case TypeUint:
		return strconv.FormatUint(v.u, 10)
	case TypeInt:
		return strconv.FormatInt(v.i, 10)
	case TypeFloat:
		return formatFloat(v.f)
	default:
		return strconv.FormatBool(v.b)
	}
}

// formatFloat renders f in plain decimal notation with at least one
// fractional digit, switching to scientific notation for very large or very
// small magnitudes.
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	if abs := math.Abs(f); abs >= 1e21 || (abs != 0 && abs < 1e-6) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}

	return literalFloat(f)
}

// literalFloat renders a finite f the way the lexer reads it back.
func literalFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}

	return s
}

// literal returns source text that lexes back to v.
func (v Value) literal() string {
	if v.typ == TypeFloat {
		return literalFloat(v.f)
	}

	return v.String()
}

type valueJSON struct {
	Value any    `json:"value" yaml:"value"`
	Type  string `json:"type"  yaml:"type"`
}

func (v Value) encoded() valueJSON {
	enc := valueJSON{Type: v.typ.String(), Value: v.Native()}

	// JSON has no representation for non-finite numbers.
	if v.typ == TypeFloat && (math.IsNaN(v.f) || math.IsInf(v.f, 0)) {
		enc.Value = formatFloat(v.f)
	}

	return enc
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.encoded())
}

// MarshalYAML implements the goccy/go-yaml InterfaceMarshaler.
func (v Value) MarshalYAML() (any, error) {
	return v.encoded(), nil
}
