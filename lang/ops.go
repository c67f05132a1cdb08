package lang

import (
	"log/slog"
	"math"
	"math/bits"
)

// Op identifies an operator in an expression tree.
type Op int

const (
	OpAdd Op = iota // +
	OpSub           // -
	OpMul           // *
	OpDiv           // /
	OpPow           // ^
	OpEq            // ==
	OpNeq           // !=
	OpLt            // <
	OpGt            // >
	OpLte           // <=
	OpGte           // >=
	OpAnd           // &&
	OpOr            // ||
	OpNeg           // -
	OpAbs           // |
	OpFact          // !
)

var opSymbol = [...]string{
	OpAdd:  "+",
	OpSub:  "-",
	OpMul:  "*",
	OpDiv:  "/",
	OpPow:  "^",
	OpEq:   "==",
	OpNeq:  "!=",
	OpLt:   "<",
	OpGt:   ">",
	OpLte:  "<=",
	OpGte:  ">=",
	OpAnd:  "&&",
	OpOr:   "||",
	OpNeg:  "-",
	OpAbs:  "|",
	OpFact: "!",
}

func (op Op) String() string {
	if op < 0 || int(op) >= len(opSymbol) {
		return "?"
	}

	return opSymbol[op]
}

// IsArithmetic reports whether op is a binary arithmetic operator.
func (op Op) IsArithmetic() bool { return op >= OpAdd && op <= OpPow }

// IsComparison reports whether op is a comparison operator.
func (op Op) IsComparison() bool { return op >= OpEq && op <= OpGte }

// IsLogical reports whether op is a logical connective.
func (op Op) IsLogical() bool { return op == OpAnd || op == OpOr }

func incompatible(op Op, a, b Value) *Error {
	return ErrIncompatibleOperands.
		Describe("%s %s %s", a.typ, op, b.typ).
		With(
			slog.String("op", op.String()),
			slog.String("left", a.typ.String()),
			slog.String("right", b.typ.String()),
		)
}

func overflow(op Op, operands ...Value) *Error {
	attrs := make([]slog.Attr, 0, len(operands)+1)
	attrs = append(attrs, slog.String("op", op.String()))

	for _, v := range operands {
		attrs = append(attrs, slog.String(v.typ.String(), v.String()))
	}

	return ErrOverflow.Describe("%s", op).With(attrs...)
}

func b2u(b bool) uint64 {
	if b {
		return 1
	}

	return 0
}

// promote converts v to typ, which must not rank below the type of v.
func promote(v Value, typ Type) (Value, error) {
	if v.typ == typ {
		return v, nil
	}

	if typ < v.typ {
		return Value{}, ErrIncompatibleOperands.
			Describe("cannot convert %s to %s", v.typ, typ)
	}

	switch typ {
	case TypeUint:
		return UintValue(b2u(v.b)), nil

	case TypeInt:
		switch v.typ {
		case TypeBool:
			return IntValue(int64(b2u(v.b))), nil
		case TypeUint:
			if v.u > math.MaxInt64 {
				return Value{}, ErrIncompatibleOperands.
					Describe("%d does not fit in %s", v.u, typ)
			}

			return IntValue(int64(v.u)), nil
		}

	case TypeFloat:
		switch v.typ {
		case TypeBool:
			return FloatValue(float64(b2u(v.b))), nil
		case TypeUint:
			return FloatValue(float64(v.u)), nil
		case TypeInt:
			return FloatValue(float64(v.i)), nil
		}
	}

	return Value{}, ErrIncompatibleOperands.
		Describe("cannot convert %s to %s", v.typ, typ)
}

// numeric promotes both operands to their common numeric type.
// Booleans become unsigned integers when neither operand is numeric.
func numeric(a, b Value) (Value, Value, error) {
	typ := max(a.typ, b.typ, TypeUint)

	a, err := promote(a, typ)
	if err != nil {
		return a, b, err
	}

	b, err = promote(b, typ)

	return a, b, err
}

// mixedSign reports whether one of a and b is an unsigned integer beyond
// int64 and the other a signed integer, which share no integer type.
func mixedSign(a, b Value) bool {
	return (a.typ == TypeUint && a.u > math.MaxInt64 && b.typ == TypeInt) ||
		(b.typ == TypeUint && b.u > math.MaxInt64 && a.typ == TypeInt)
}

// magnitude splits an integer value into its absolute value and sign.
func magnitude(v Value) (uint64, bool) {
	if v.typ == TypeUint {
		return v.u, false
	}

	if v.i < 0 {
		return uint64(-(v.i + 1)) + 1, true
	}

	return uint64(v.i), false
}

// arithMixed applies op to a mixedSign pair by sign and magnitude.
func arithMixed(op Op, a, b Value) (Value, error) {
	if op == OpPow && a.typ == TypeInt {
		r, ok := powInt(a.i, b.u)
		if !ok {
			return Value{}, overflow(op, a, b)
		}

		return IntValue(r), nil
	}

	ma, na := magnitude(a)
	mb, nb := magnitude(b)

	// negated returns -r, which must fit in int64 when integral.
	negated := func(r Value, err error) (Value, error) {
		if err != nil {
			return Value{}, err
		}

		switch r.typ {
		case TypeFloat:
			return FloatValue(-r.f), nil
		case TypeUint:
			if n, ok := negUint(r.u); ok {
				return IntValue(n), nil
			}
		}

		return Value{}, overflow(op, a, b)
	}

	if !na && !nb {
		if op == OpSub && ma < mb {
			return negated(arithUint(OpSub, mb, ma))
		}

		return arithUint(op, ma, mb)
	}

	switch op {
	case OpAdd:
		if na {
			return arithUint(OpSub, mb, ma)
		}

		return arithUint(OpSub, ma, mb)

	case OpSub:
		if nb {
			return arithUint(OpAdd, ma, mb)
		}

		return negated(arithUint(OpAdd, ma, mb))

	case OpMul, OpDiv:
		return negated(arithUint(op, ma, mb))

	case OpPow:
		// Unsigned base, negative exponent.
		return FloatValue(math.Pow(float64(a.u), float64(b.i))), nil
	}

	return Value{}, incompatible(op, a, b)
}

// Arithmetic applies the binary arithmetic operator op to a and b.
func Arithmetic(op Op, a, b Value) (Value, error) {
	if mixedSign(a, b) {
		return arithMixed(op, a, b)
	}

	x, y, err := numeric(a, b)
	if err != nil {
		return Value{}, WrapError(err).With(slog.String("op", op.String()))
	}

	switch x.typ {
	case TypeUint:
		return arithUint(op, x.u, y.u)
	case TypeInt:
		return arithInt(op, x.i, y.i)
	default:
		return arithFloat(op, x.f, y.f)
	}
}

func arithInt(op Op, x, y int64) (Value, error) {
	switch op {
	case OpAdd:
		s := x + y
		if (s > x) != (y > 0) {
			return Value{}, overflow(op, IntValue(x), IntValue(y))
		}

		return IntValue(s), nil

	case OpSub:
		d := x - y
		if (d < x) != (y > 0) {
			return Value{}, overflow(op, IntValue(x), IntValue(y))
		}

		return IntValue(d), nil

	case OpMul:
		p, ok := mulInt(x, y)
		if !ok {
			return Value{}, overflow(op, IntValue(x), IntValue(y))
		}

		return IntValue(p), nil

	case OpDiv:
		if y == 0 {
			return Value{}, ErrDivisionByZero.Describe("%d / 0", x)
		}

		if x == math.MinInt64 && y == -1 {
			return Value{}, overflow(op, IntValue(x), IntValue(y))
		}

		if x%y == 0 {
			return IntValue(x / y), nil
		}

		return FloatValue(float64(x) / float64(y)), nil

	case OpPow:
		if y < 0 {
			if x == 0 {
				return Value{}, ErrDivisionByZero.Describe("0 ^ %d", y)
			}

			return FloatValue(math.Pow(float64(x), float64(y))), nil
		}

		r, ok := powInt(x, uint64(y))
		if !ok {
			return Value{}, overflow(op, IntValue(x), IntValue(y))
		}

		return IntValue(r), nil
	}

	return Value{}, incompatible(op, IntValue(x), IntValue(y))
}

func arithUint(op Op, x, y uint64) (Value, error) {
	switch op {
	case OpAdd:
		s, carry := bits.Add64(x, y, 0)
		if carry != 0 {
			return Value{}, overflow(op, UintValue(x), UintValue(y))
		}

		return UintValue(s), nil

	case OpSub:
		if x >= y {
			return UintValue(x - y), nil
		}

		// Negative differences continue in the signed domain.
		n, ok := negUint(y - x)
		if !ok {
			return Value{}, overflow(op, UintValue(x), UintValue(y))
		}

		return IntValue(n), nil

	case OpMul:
		hi, lo := bits.Mul64(x, y)
		if hi != 0 {
			return Value{}, overflow(op, UintValue(x), UintValue(y))
		}

		return UintValue(lo), nil

	case OpDiv:
		if y == 0 {
			return Value{}, ErrDivisionByZero.Describe("%d / 0", x)
		}

		if x%y == 0 {
			return UintValue(x / y), nil
		}

		return FloatValue(float64(x) / float64(y)), nil

	case OpPow:
		r, ok := powUint(x, y)
		if !ok {
			return Value{}, overflow(op, UintValue(x), UintValue(y))
		}

		return UintValue(r), nil
	}

	return Value{}, incompatible(op, UintValue(x), UintValue(y))
}

func arithFloat(op Op, x, y float64) (Value, error) {
	switch op {
	case OpAdd:
		return FloatValue(x + y), nil
	case OpSub:
		return FloatValue(x - y), nil
	case OpMul:
		return FloatValue(x * y), nil
	case OpDiv:
		return FloatValue(x / y), nil
	case OpPow:
		r := math.Pow(x, y)
		if math.IsInf(r, 0) && x != 0 && !math.IsInf(x, 0) && !math.IsInf(y, 0) {
			return Value{}, overflow(op, FloatValue(x), FloatValue(y))
		}

		return FloatValue(r), nil
	}

	return Value{}, incompatible(op, FloatValue(x), FloatValue(y))
}

// mulInt returns x*y and whether the product fits in int64.
func mulInt(x, y int64) (int64, bool) {
	if x == 0 || y == 0 {
		return 0, true
	}

	p := x * y
	if (x == -1 && y == math.MinInt64) || (y == -1 && x == math.MinInt64) {
		return 0, false
	}

	return p, p/y == x
}

// powInt returns x**n by repeated squaring and whether it fits in int64.
func powInt(x int64, n uint64) (int64, bool) {
	r := int64(1)

	for {
		if n&1 == 1 {
			var ok bool
			if r, ok = mulInt(r, x); !ok {
				return 0, false
			}
		}

		n >>= 1
		if n == 0 {
			return r, true
		}

		var ok bool
		if x, ok = mulInt(x, x); !ok {
			return 0, false
		}
	}
}

// powUint returns x**n by repeated squaring and whether it fits in uint64.
func powUint(x, n uint64) (uint64, bool) {
	r := uint64(1)

	for {
		if n&1 == 1 {
			hi, lo := bits.Mul64(r, x)
			if hi != 0 {
				return 0, false
			}

			r = lo
		}

		n >>= 1
		if n == 0 {
			return r, true
		}

		hi, lo := bits.Mul64(x, x)
		if hi != 0 {
			return 0, false
		}

		x = lo
	}
}

// negUint returns -u as an int64 and whether it is representable.
func negUint(u uint64) (int64, bool) {
	switch {
	case u <= math.MaxInt64:
		return -int64(u), true
	case u == math.MaxInt64+1:
		return math.MinInt64, true
	default:
		return 0, false
	}
}

// Negate returns the arithmetic negation of v.
func Negate(v Value) (Value, error) {
	switch v.typ {
	case TypeBool:
		return IntValue(-int64(b2u(v.b))), nil

	case TypeUint:
		n, ok := negUint(v.u)
		if !ok {
			return Value{}, overflow(OpNeg, v)
		}

		return IntValue(n), nil

	case TypeInt:
		if v.i == math.MinInt64 {
			return Value{}, overflow(OpNeg, v)
		}

		return IntValue(-v.i), nil

	default:
		return FloatValue(-v.f), nil
	}
}

// Abs returns the absolute value of v.
// The magnitude of the minimum int64 is returned as an unsigned integer.
func Abs(v Value) (Value, error) {
	switch v.typ {
	case TypeBool:
		return IntValue(int64(b2u(v.b))), nil

	case TypeUint:
		return v, nil

	case TypeInt:
		switch {
		case v.i == math.MinInt64:
			return UintValue(math.MaxInt64 + 1), nil
		case v.i < 0:
			return IntValue(-v.i), nil
		default:
			return v, nil
		}

	default:
		return FloatValue(math.Abs(v.f)), nil
	}
}

// Factorial returns v! for a non-negative integer v, keeping its type.
func Factorial(v Value) (Value, error) {
	switch v.typ {
	case TypeBool:
		return IntValue(1), nil

	case TypeFloat:
		return Value{}, ErrRequiresInteger.
			Describe("factorial of %s", v).
			With(slog.String("type", v.typ.String()))

	case TypeInt:
		if v.i < 0 {
			return Value{}, ErrRequiresNonNegative.Describe("factorial of %d", v.i)
		}

		r := int64(1)
		for k := int64(2); k <= v.i; k++ {
			var ok bool
			if r, ok = mulInt(r, k); !ok {
				return Value{}, overflow(OpFact, v)
			}
		}

		return IntValue(r), nil

	default:
		r := uint64(1)
		for k := uint64(2); k <= v.u; k++ {
			hi, lo := bits.Mul64(r, k)
			if hi != 0 {
				return Value{}, overflow(OpFact, v)
			}

			r = lo
		}

		return UintValue(r), nil
	}
}

// Compare applies the comparison operator op to a and b.
//
// Numeric operands are promoted to their common type first. Booleans only
// support equality against other booleans.
func Compare(op Op, a, b Value) (Value, error) {
	if a.typ == TypeBool || b.typ == TypeBool {
		if a.typ != b.typ || (op != OpEq && op != OpNeq) {
			return Value{}, incompatible(op, a, b)
		}

		return BoolValue((a.b == b.b) == (op == OpEq)), nil
	}

	var c int

	if mixedSign(a, b) {
		ma, na := magnitude(a)
		mb, nb := magnitude(b)

		switch {
		case na:
			c = -1
		case nb:
			c = 1
		default:
			c = cmp3(ma, mb)
		}

		return compared(op, c, a, b)
	}

	x, y, err := numeric(a, b)
	if err != nil {
		return Value{}, WrapError(err).With(slog.String("op", op.String()))
	}

	switch x.typ {
	case TypeUint:
		c = cmp3(x.u, y.u)
	case TypeInt:
		c = cmp3(x.i, y.i)
	default:
		// IEEE semantics: every ordered comparison involving NaN is false.
		if math.IsNaN(x.f) || math.IsNaN(y.f) {
			return BoolValue(op == OpNeq), nil
		}

		c = cmp3(x.f, y.f)
	}

	return compared(op, c, a, b)
}

// compared maps the three-way comparison c onto op.
func compared(op Op, c int, a, b Value) (Value, error) {
	switch op {
	case OpEq:
		return BoolValue(c == 0), nil
	case OpNeq:
		return BoolValue(c != 0), nil
	case OpLt:
		return BoolValue(c < 0), nil
	case OpGt:
		return BoolValue(c > 0), nil
	case OpLte:
		return BoolValue(c <= 0), nil
	case OpGte:
		return BoolValue(c >= 0), nil
	}

	return Value{}, incompatible(op, a, b)
}

func cmp3[T int64 | uint64 | float64](x, y T) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}

// requireBool asserts that v is a boolean operand of op.
func requireBool(op Op, v Value) (bool, error) {
	if v.typ != TypeBool {
		return false, ErrRequiresBoolean.
			Describe("%s operand is %s", op, v.typ).
			With(slog.String("op", op.String()))
	}

	return v.b, nil
}
