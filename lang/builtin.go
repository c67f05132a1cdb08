package lang

import (
	"iter"
	"log/slog"
	"maps"
	"math"
	"math/bits"
	"slices"
	"strings"
)

// Builtin is one of the reserved functions callable from expressions.
type Builtin struct {
	fn     func(args []Value) (Value, error)
	Name   string
	Params []string
}

// Arity returns the exact number of arguments the function accepts.
func (b *Builtin) Arity() int { return len(b.Params) }

// Signature returns a display form such as "gcd(a, b)".
func (b *Builtin) Signature() string {
	return b.Name + "(" + strings.Join(b.Params, ", ") + ")"
}

// Call applies the function to already evaluated arguments.
func (b *Builtin) Call(args ...Value) (Value, error) {
	if len(args) != b.Arity() {
		return Value{}, arityMismatch(b, len(args))
	}

	v, err := b.fn(args)
	if err != nil {
		return Value{}, WrapError(err).With(slog.String("function", b.Name))
	}

	return v, nil
}

func arityMismatch(b *Builtin, got int) *Error {
	return ErrArityMismatch.
		Describe("%s expects %d argument%s, got %d",
			b.Name, b.Arity(), plural(b.Arity()), got).
		With(
			slog.String("function", b.Name),
			slog.Int("expected", b.Arity()),
			slog.Int("got", got),
		)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}

	return "s"
}

var builtins = map[string]*Builtin{
	"gcd":   {Name: "gcd", Params: []string{"a", "b"}, fn: gcd},
	"lcm":   {Name: "lcm", Params: []string{"a", "b"}, fn: lcm},
	"floor": {Name: "floor", Params: []string{"x"}, fn: rounding(math.Floor)},
	"ceil":  {Name: "ceil", Params: []string{"x"}, fn: rounding(math.Ceil)},
	"sin":   {Name: "sin", Params: []string{"x"}, fn: trig(math.Sin)},
	"cos":   {Name: "cos", Params: []string{"x"}, fn: trig(math.Cos)},
	"tan":   {Name: "tan", Params: []string{"x"}, fn: trig(math.Tan)},
	"asin":  {Name: "asin", Params: []string{"x"}, fn: trig(math.Asin)},
	"acos":  {Name: "acos", Params: []string{"x"}, fn: trig(math.Acos)},
	"atan":  {Name: "atan", Params: []string{"x"}, fn: trig(math.Atan)},
}

// LookupBuiltin returns the reserved function with the given name.
func LookupBuiltin(name string) (*Builtin, bool) {
	b, ok := builtins[name]

	return b, ok
}

// Builtins returns an iterator over all reserved functions ordered by name.
func Builtins() iter.Seq[*Builtin] {
	return func(yield func(*Builtin) bool) {
		for _, name := range slices.Sorted(maps.Keys(builtins)) {
			if !yield(builtins[name]) {
				return
			}
		}
	}
}

// rounding returns floor/ceil semantics: floats are rounded and stay floats,
// integers pass through unchanged.
func rounding(fn func(float64) float64) func([]Value) (Value, error) {
	return func(args []Value) (Value, error) {
		switch x := args[0]; x.typ {
		case TypeFloat:
			return FloatValue(fn(x.f)), nil
		case TypeBool:
			return promote(x, TypeInt)
		default:
			return x, nil
		}
	}
}

func trig(fn func(float64) float64) func([]Value) (Value, error) {
	return func(args []Value) (Value, error) {
		x, err := promote(args[0], TypeFloat)
		if err != nil {
			return Value{}, err
		}

		return FloatValue(fn(x.f)), nil
	}
}

// magnitude returns |v| for an integer v.
func magnitude(v Value) (uint64, error) {
	switch v.typ {
	case TypeBool:
		return b2u(v.b), nil
	case TypeUint:
		return v.u, nil
	case TypeInt:
		if v.i < 0 {
			return uint64(-(v.i + 1)) + 1, nil
		}

		return uint64(v.i), nil
	default:
		return 0, ErrRequiresInteger.
			Describe("got %s", v.typ).
			With(slog.String("value", v.String()))
	}
}

func integerPair(args []Value) (a, b uint64, err error) {
	if a, err = magnitude(args[0]); err != nil {
		return 0, 0, err
	}

	b, err = magnitude(args[1])

	return a, b, err
}

func euclid(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}

	return a
}

func gcd(args []Value) (Value, error) {
	a, b, err := integerPair(args)
	if err != nil {
		return Value{}, err
	}

	return UintValue(euclid(a, b)), nil
}

func lcm(args []Value) (Value, error) {
	a, b, err := integerPair(args)
	if err != nil {
		return Value{}, err
	}

	if a == 0 || b == 0 {
		return UintValue(0), nil
	}

	hi, lo := bits.Mul64(a/euclid(a, b), b)
	if hi != 0 {
		return Value{}, ErrOverflow.
			Describe("lcm(%d, %d)", a, b).
			With(slog.String("function", "lcm"))
	}

	return UintValue(lo), nil
}
