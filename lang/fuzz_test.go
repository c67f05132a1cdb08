package lang

import (
	"errors"
	"testing"
)

func FuzzParse(f *testing.F) {
	for _, seed := range []string{
		"1 + 2 * 3",
		"x = y = 2 ^ -3!",
		"| |x| - 1|",
		"gcd(12, lcm(4, 6))",
		"2(3 + 4)(5)",
		"true && false || 1 < 2.5",
		"3!=3",
		"18446744073709551615",
		"5.",
		"((",
		")",
		"1 2",
	} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		e, err := ParseString(t.Context(), input)
		if err != nil {
			var le *Error
			if !errors.As(err, &le) {
				t.Fatalf("error %T is not *Error: %v", err, err)
			}

			return
		}

		again, err := ParseString(t.Context(), e.String())
		if err != nil {
			t.Fatalf("reparse of %q (from %q): %v", e, input, err)
		}

		if !Equal(e, again) {
			t.Fatalf("round trip changed tree: %q -> %q", e, again)
		}
	})
}

func FuzzEvaluate(f *testing.F) {
	for _, seed := range []string{
		"9223372036854775807 + 1",
		"2 ^ 64",
		"21!",
		"1 / 0",
		"-9223372036854775808 / -1",
		"lcm(4294967296, 4294967297)",
		"| -9223372036854775808 |",
	} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		// Evaluation must never panic; every failure is an *Error.
		_, err := EvaluateLine(t.Context(), input, nil)
		if err != nil {
			var le *Error
			if !errors.As(err, &le) {
				t.Fatalf("error %T is not *Error: %v", err, err)
			}
		}
	})
}
