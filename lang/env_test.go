package lang

import (
	"slices"
	"testing"
)

func newTestEnv(t *testing.T, lines ...string) *Environment {
	t.Helper()

	env := NewEnvironment()

	for _, line := range lines {
		if _, err := EvaluateLine(t.Context(), line, env); err != nil {
			t.Fatalf("%s: unexpected error: %v", line, err)
		}
	}

	return env
}

func TestEnvironment_Names(t *testing.T) {
	env := newTestEnv(t, "zeta = 1", "alpha = 2", "mid = alpha + zeta")

	got := slices.Collect(env.Names())
	want := []string{"alpha", "mid", "zeta"}

	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	if env.Len() != 3 {
		t.Errorf("got length %d, want 3", env.Len())
	}
}

func TestEnvironment_Reset(t *testing.T) {
	env := newTestEnv(t, "a = 1", "b = 2")

	env.Reset()

	if env.Len() != 0 {
		t.Errorf("got length %d after reset, want 0", env.Len())
	}

	if _, ok := env.Lookup("a"); ok {
		t.Errorf("a still defined after reset")
	}
}

func TestEnvironment_Dependencies(t *testing.T) {
	env := newTestEnv(t,
		"a = 1",
		"b = a + 1",
		"c = b * b + a",
		"d = 7",
	)

	tests := []struct {
		name string
		want []string
	}{
		{"a", nil},
		{"b", []string{"a"}},
		{"c", []string{"a", "b"}},
		{"missing", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := env.Dependencies(tt.name); !slices.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEnvironment_DependsOn(t *testing.T) {
	env := newTestEnv(t,
		"a = 1",
		"b = a + 1",
		"c = b * 2",
		"d = 7",
	)

	tests := []struct {
		name, dep string
		want      bool
	}{
		{"b", "a", true},
		{"c", "a", true},
		{"c", "b", true},
		{"a", "c", false},
		{"d", "a", false},
		{"c", "c", false},
		{"missing", "a", false},
	}

	for _, tt := range tests {
		t.Run(tt.name+"->"+tt.dep, func(t *testing.T) {
			if got := env.DependsOn(tt.name, tt.dep); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEnvironment_Last(t *testing.T) {
	env := newTestEnv(t, "x = 2", "y = x * 3")

	if v, ok := env.Last("y"); !ok || v.String() != "6" {
		t.Errorf("got %v %v, want 6 true", v, ok)
	}

	if _, err := EvaluateLine(t.Context(), "x = 5", env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The cached value is refreshed only when y is evaluated again.
	if v, _ := env.Last("y"); v.String() != "6" {
		t.Errorf("got %v before re-evaluation, want 6", v)
	}

	if _, err := EvaluateLine(t.Context(), "y", env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if v, _ := env.Last("y"); v.String() != "15" {
		t.Errorf("got %v after re-evaluation, want 15", v)
	}

	if _, ok := env.Last("missing"); ok {
		t.Errorf("got a value for an undefined name")
	}
}

func TestEnvironment_LookupIsUnevaluated(t *testing.T) {
	env := newTestEnv(t, "x = 1", "y = x + 1")

	e, ok := env.Lookup("y")
	if !ok {
		t.Fatal("y is not defined")
	}

	if got, want := e.String(), "x + 1"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
