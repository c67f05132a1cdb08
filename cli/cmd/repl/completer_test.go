package repl

import (
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/sahilm/fuzzy"

	"github.com/BradenEverson/chalk/lang"
)

func TestWordBounds_Operators(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"simple", "foo", 3, "foo", 0, 3},
		{"after_plus", "a + fo", 6, "fo", 4, 6},
		{"after_paren", "gcd(fo", 6, "fo", 4, 6},
		{"after_comma", "gcd(a, fo", 9, "fo", 7, 9},
		{"after_minus", "a-fo", 4, "fo", 2, 4},
		{"after_power", "x^fo", 4, "fo", 2, 4},
		{"after_bar", "|fo", 3, "fo", 1, 3},
		{"after_logical", "a&&fo", 5, "fo", 3, 5},
		{"after_comparison", "a>=fo", 5, "fo", 3, 5},
		{"after_assignment", "x=fo", 4, "fo", 2, 4},
		{"empty_at_boundary", "a + ", 4, "", 4, 4},
		{"mid_word", "foobar", 3, "foobar", 0, 6},
		{"at_start", "foo", 0, "foo", 0, 3},
		{"between_operators", "a+b", 2, "b", 2, 3},
		{"underscore", "my_var", 6, "my_var", 0, 6},
		{"digits", "x2 + y", 2, "x2", 0, 2},
		{"cursor_past_end", "ab", 10, "ab", 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end,
					tt.wantWord, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestEvalCandidates(t *testing.T) {
	env := lang.NewEnvironment()

	for _, line := range []string{"radius = 2", "area = radius^2"} {
		if _, err := lang.EvaluateLine(t.Context(), line, env); err != nil {
			t.Fatal(err)
		}
	}

	got := evalCandidates(env)

	for _, want := range []string{"gcd", "sin", "area", "radius"} {
		if !slices.Contains(got, want) {
			t.Errorf("candidates %v missing %q", got, want)
		}
	}

	// Variables follow the functions, in name order.
	if n := len(got); got[n-2] != "area" || got[n-1] != "radius" {
		t.Errorf("got trailing candidates %v, want [area radius]", got[n-2:])
	}
}

func TestIsFunction(t *testing.T) {
	if !isFunction("lcm") {
		t.Error("lcm should be a function")
	}

	if isFunction("radius") || isFunction("help") {
		t.Error("only reserved names are functions")
	}
}

func TestRenderCandidateBar(t *testing.T) {
	matches := fuzzy.Find("c", []string{"ceil", "cos", "clear", "acos"})

	full := ansi.Strip(renderCandidateBar(matches, -1, false, 200))
	if !strings.Contains(full, "ceil()") || !strings.Contains(full, "clear") {
		t.Errorf("bar %q should list every candidate", full)
	}

	if strings.Contains(full, "clear()") {
		t.Errorf("bar %q marks a command as a function", full)
	}

	narrow := ansi.Strip(renderCandidateBar(matches, -1, false, 12))
	if !strings.HasSuffix(narrow, "...") {
		t.Errorf("narrow bar %q should be ellipsized", narrow)
	}

	if renderCandidateBar(nil, 0, false, 80) != "" {
		t.Error("no matches should render nothing")
	}
}
