package lang

import (
	"errors"
	"testing"
)

func TestEvaluateLine(t *testing.T) {
	tests := []struct {
		input    string
		want     string
		wantType Type
	}{
		// Integer arithmetic
		{"1 + 2", "3", TypeInt},
		{"1 + 2 * 3", "7", TypeInt},
		{"|86^2*-1|", "7396", TypeInt},
		{"2 + 3 * 4", "14", TypeInt},
		{"(2 + 3) * 4", "20", TypeInt},
		{"10 - 15", "-5", TypeInt},
		{"8 / 2", "4", TypeInt},
		{"7 / 2", "3.5", TypeFloat},
		{"10 / 4 * 2", "5.0", TypeFloat},
		{"2(3 + 4)", "14", TypeInt},
		{"2 ^ 10", "1024", TypeInt},
		{"2 ^ 3 ^ 2", "512", TypeInt},
		{"2 ^ -1", "0.5", TypeFloat},
		{"0 ^ 0", "1", TypeInt},
		{"-2 ^ 2", "4", TypeInt},
		{"--5", "5", TypeInt},

		// Unsigned integers
		{"18446744073709551615 - 9223372036854775808", "9223372036854775807", TypeUint},
		{"9223372036854775808 - 9223372036854775809", "-1", TypeInt},
		{"-9223372036854775808", "-9223372036854775808", TypeInt},
		{"9223372036854775808 / 9223372036854775808", "1", TypeUint},

		// Unsigned integers beyond int64 mixed with signed integers
		{"9223372036854775808 + 1", "9223372036854775809", TypeUint},
		{"18446744073709551615 + -1", "18446744073709551614", TypeUint},
		{"-1 + 18446744073709551615", "18446744073709551614", TypeUint},
		{"lcm(4611686018427387904, 3) + 1", "13835058055282163713", TypeUint},
		{"9223372036854775809 - 1", "9223372036854775808", TypeUint},
		{"1 - 9223372036854775809", "-9223372036854775808", TypeInt},
		{"5 - 9223372036854775808", "-9223372036854775803", TypeInt},
		{"-1 * 9223372036854775808", "-9223372036854775808", TypeInt},
		{"18446744073709551615 / -5", "-3689348814741910323", TypeInt},
		{"-9223372036854775808 / 9223372036854775808", "-1", TypeInt},
		{"(-1) ^ 18446744073709551615", "-1", TypeInt},
		{"1 ^ 18446744073709551615", "1", TypeInt},

		// Floats
		{"1.5 + 1", "2.5", TypeFloat},
		{"2.0 * 3", "6.0", TypeFloat},
		{"1.0 / 3", "0.3333333333333333", TypeFloat},
		{"0.0000001 * 1", "1e-07", TypeFloat},
		{"2.0 ^ 70", "1.1805916207174113e+21", TypeFloat},
		{"1.0 / 0", "inf", TypeFloat},
		{"1.0 / 0.0", "inf", TypeFloat},
		{"0.0 ^ -1", "inf", TypeFloat},
		{"-1.0 / 0", "-inf", TypeFloat},
		{"2 ^ 0.5", "1.4142135623730951", TypeFloat},

		// Factorial and absolute value
		{"0!", "1", TypeInt},
		{"5!", "120", TypeInt},
		{"20!", "2432902008176640000", TypeInt},
		{"3!!", "720", TypeInt},
		{"-3!", "-6", TypeInt},
		{"|-5|", "5", TypeInt},
		{"|3 - 10|", "7", TypeInt},
		{"|-2.5|", "2.5", TypeFloat},
		{"|-9223372036854775808|", "9223372036854775808", TypeUint},
		{"| |-2| - 5|", "3", TypeInt},

		// Functions
		{"gcd(12, 18)", "6", TypeUint},
		{"gcd(-12, 18)", "6", TypeUint},
		{"gcd(0, 0)", "0", TypeUint},
		{"lcm(4, 6)", "12", TypeUint},
		{"lcm(0, 5)", "0", TypeUint},
		{"floor(2.7)", "2.0", TypeFloat},
		{"floor(-2.5)", "-3.0", TypeFloat},
		{"ceil(2.1)", "3.0", TypeFloat},
		{"floor(5)", "5", TypeInt},
		{"ceil(true)", "1", TypeInt},
		{"sin(0)", "0.0", TypeFloat},
		{"cos(0)", "1.0", TypeFloat},
		{"atan(0.0)", "0.0", TypeFloat},
		{"floor(7 / 2)", "3.0", TypeFloat},

		// Comparison
		{"1 < 2", "true", TypeBool},
		{"2 <= 2", "true", TypeBool},
		{"3 > 4", "false", TypeBool},
		{"1 < 2.5", "true", TypeBool},
		{"3 == 3.0", "true", TypeBool},
		{"3!=3", "false", TypeBool},
		{"true == true", "true", TypeBool},
		{"true != false", "true", TypeBool},
		{"18446744073709551615 > 9223372036854775808", "true", TypeBool},
		{"18446744073709551615 > 0", "true", TypeBool},
		{"18446744073709551615 > 1", "true", TypeBool},
		{"-1 < 18446744073709551615", "true", TypeBool},
		{"18446744073709551615 == -1", "false", TypeBool},
		{"9223372036854775808 >= 9223372036854775807", "true", TypeBool},
		{"10 ^ 2 == 100", "true", TypeBool},
		{"0 < -1", "false", TypeBool},
		{"1 + 2 == 3", "true", TypeBool},

		// Logic
		{"true && false", "false", TypeBool},
		{"true || false", "true", TypeBool},
		{"1 < 2 && 2 < 3", "true", TypeBool},
		{"false && 1 / 0 > 0", "false", TypeBool},
		{"true || undefined_name", "true", TypeBool},

		// Booleans in arithmetic
		{"true + true", "2", TypeUint},
		{"true * 5", "5", TypeInt},
		{"true + 0.5", "1.5", TypeFloat},
		{"-true", "-1", TypeInt},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := EvaluateLine(t.Context(), tt.input, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got.String() != tt.want || got.Type() != tt.wantType {
				t.Errorf("got %s %s, want %s %s",
					got.Type(), got, tt.wantType, tt.want)
			}
		})
	}
}

func TestEvaluateLine_Deterministic(t *testing.T) {
	for _, input := range []string{
		"1 + 2 * 3",
		"2 ^ 3 ^ 2",
		"-3!",
		"|86^2*-1|",
		"7 / 2",
		"1.0 / 0.0",
		"sin(1) + cos(1)",
		"gcd(12, 18) * lcm(4, 6)",
		"10 ^ 2 == 100 && 0 < -1",
	} {
		first, err := EvaluateLine(t.Context(), input, NewEnvironment())
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", input, err)
		}

		second, err := EvaluateLine(t.Context(), input, NewEnvironment())
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", input, err)
		}

		if !first.Equal(second) || first.Type() != second.Type() {
			t.Errorf("%s: got %s %s then %s %s", input,
				first.Type(), first, second.Type(), second)
		}
	}
}

func TestEvaluateLine_Errors(t *testing.T) {
	tests := []struct {
		input string
		want  error
	}{
		{"1 / 0", ErrDivisionByZero},
		{"9223372036854775807 + 1", ErrOverflow},
		{"-9223372036854775807 - 2", ErrOverflow},
		{"18446744073709551615 + 1", ErrOverflow},
		{"4294967296 * 4294967296", ErrOverflow},
		{"2 ^ 63", ErrOverflow},
		{"10.0 ^ 400", ErrOverflow},
		{"21!", ErrOverflow},
		{"-(-9223372036854775807 - 1)", ErrOverflow},
		{"lcm(18446744073709551615, 18446744073709551614)", ErrOverflow},
		{"18446744073709551615 - -1", ErrOverflow},
		{"-1 - 18446744073709551615", ErrOverflow},
		{"-1 - 9223372036854775808", ErrOverflow},
		{"1 - 18446744073709551615", ErrOverflow},
		{"18446744073709551615 * -1", ErrOverflow},
		{"2 ^ 18446744073709551615", ErrOverflow},
		{"0 ^ -1", ErrDivisionByZero},
		{"0 ^ -9223372036854775808", ErrDivisionByZero},
		{"(-1)!", ErrRequiresNonNegative},
		{"2.5!", ErrRequiresInteger},
		{"gcd(1.5, 2)", ErrRequiresInteger},
		{"lcm(4, 0.5)", ErrRequiresInteger},
		{"true < false", ErrIncompatibleOperands},
		{"true == 1", ErrIncompatibleOperands},
		{"1 < 2 < 3", ErrIncompatibleOperands},
		{"1 && true", ErrRequiresBoolean},
		{"true && 0", ErrRequiresBoolean},
		{"false || 1", ErrRequiresBoolean},
		{"x + 1", ErrUndefinedVariable},
		{"1 +", ErrUnexpectedToken},
		{"3 @ 4", ErrUnrecognizedCharacter},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := EvaluateLine(t.Context(), tt.input, nil)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got error %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEvaluateLine_ErrorCategories(t *testing.T) {
	tests := []struct {
		input string
		want  error
		not   []error
	}{
		{"1 / 0", ErrType, []error{ErrLex, ErrParse}},
		{"1 / 0", ErrEval, nil},
		{"x", ErrEval, []error{ErrType}},
		{"21!", ErrEval, []error{ErrType}},
		{"(", ErrParse, []error{ErrEval}},
		{"~", ErrLex, []error{ErrParse}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := EvaluateLine(t.Context(), tt.input, nil)
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want match for %v", err, tt.want)
			}

			for _, n := range tt.not {
				if errors.Is(err, n) {
					t.Errorf("error %v unexpectedly matched %v", err, n)
				}
			}
		})
	}
}

func TestEvaluate_Lazy(t *testing.T) {
	env := NewEnvironment()

	steps := []struct {
		input string
		want  string
	}{
		{"x = 2", "2"},
		{"y = x + 1", "3"},
		{"x = 10", "10"},
		{"y", "11"},
		{"z = y * 2", "22"},
		{"x = 0.5", "0.5"},
		{"z", "3.0"},
	}

	for _, step := range steps {
		got, err := EvaluateLine(t.Context(), step.input, env)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", step.input, err)
		}

		if got.String() != step.want {
			t.Errorf("%s: got %s, want %s", step.input, got, step.want)
		}
	}
}

func TestEvaluate_ChainedAssignment(t *testing.T) {
	env := NewEnvironment()

	got, err := EvaluateLine(t.Context(), "a = b = 2 + 3", env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.String() != "5" {
		t.Errorf("got %s, want 5", got)
	}

	for _, name := range []string{"a", "b"} {
		e, ok := env.Lookup(name)
		if !ok {
			t.Fatalf("%s is not defined", name)
		}

		if e.String() != "2 + 3" {
			t.Errorf("%s bound to %q, want %q", name, e, "2 + 3")
		}
	}

	// Each name owns an independent copy of the expression.
	ea, _ := env.Lookup("a")
	eb, _ := env.Lookup("b")

	if ea == eb {
		t.Errorf("a and b share the same expression tree")
	}

	if _, err := EvaluateLine(t.Context(), "a = 1", env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got, _ := EvaluateLine(t.Context(), "b", env); got.String() != "5" {
		t.Errorf("b: got %s, want 5", got)
	}
}

func TestEvaluate_Cycles(t *testing.T) {
	env := NewEnvironment()

	for _, line := range []string{"a = 1", "b = a + 1", "c = b * 2"} {
		if _, err := EvaluateLine(t.Context(), line, env); err != nil {
			t.Fatalf("%s: unexpected error: %v", line, err)
		}
	}

	for _, line := range []string{"a = c", "a = a + 1", "b = c - 1", "d = d", "e = f = e"} {
		if _, err := EvaluateLine(t.Context(), line, env); !errors.Is(err, ErrCyclicDefinition) {
			t.Errorf("%s: got error %v, want %v", line, err, ErrCyclicDefinition)
		}
	}

	// Rejected definitions leave the environment unchanged.
	got, err := EvaluateLine(t.Context(), "c", env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.String() != "4" {
		t.Errorf("c: got %s, want 4", got)
	}

	for _, name := range []string{"d", "e", "f"} {
		if _, ok := env.Lookup(name); ok {
			t.Errorf("%s defined after a rejected assignment", name)
		}
	}
}

func TestEvaluate_FailedAssignment(t *testing.T) {
	env := NewEnvironment()

	if _, err := EvaluateLine(t.Context(), "x = 3", env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		input string
		want  error
	}{
		{"x = 1 / 0", ErrDivisionByZero},
		{"x = missing + 1", ErrUndefinedVariable},
		{"x = 21!", ErrOverflow},
		{"x = (", ErrUnexpectedToken},
	}

	for _, tt := range tests {
		if _, err := EvaluateLine(t.Context(), tt.input, env); !errors.Is(err, tt.want) {
			t.Errorf("%s: got error %v, want %v", tt.input, err, tt.want)
		}
	}

	got, err := EvaluateLine(t.Context(), "x", env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.String() != "3" {
		t.Errorf("x: got %s, want 3", got)
	}
}

func TestEvaluate_UndefinedDependency(t *testing.T) {
	env := NewEnvironment()

	lines := []string{"a = 1", "b = a + 1"}
	for _, line := range lines {
		if _, err := EvaluateLine(t.Context(), line, env); err != nil {
			t.Fatalf("%s: unexpected error: %v", line, err)
		}
	}

	env.Reset()

	if _, err := EvaluateLine(t.Context(), "b", env); !errors.Is(err, ErrUndefinedVariable) {
		t.Errorf("got error %v, want %v", err, ErrUndefinedVariable)
	}
}

func TestEvaluate_ShortCircuitSkipsErrors(t *testing.T) {
	env := NewEnvironment()

	tests := []struct {
		input string
		want  string
	}{
		{"false && (1 / 0 == 1)", "false"},
		{"true || (21! > 0)", "true"},
		{"false && nothing", "false"},
	}

	for _, tt := range tests {
		got, err := EvaluateLine(t.Context(), tt.input, env)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tt.input, err)

			continue
		}

		if got.String() != tt.want {
			t.Errorf("%s: got %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestEvaluate_NilEnvironment(t *testing.T) {
	e := mustParse(t, "y = 4")

	got, err := Evaluate(t.Context(), e, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.String() != "4" {
		t.Errorf("got %s, want 4", got)
	}
}
